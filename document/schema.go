package document

// ColumnInfo describes one column of a table, as inferred from its rows.
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Repeated bool   `json:"repeated"`
}

// Describe infers the columns of rows. Columns holding only mappings are
// expanded into their fields using dot notation (e.g. "address.city").
func Describe(rows []Row) []ColumnInfo {
	return describeRows(rows, "")
}

func describeRows(rows []Row, prefix string) []ColumnInfo {
	var infos []ColumnInfo
	for _, key := range UniqueKeys(rows) {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}

		var (
			kinds    = make(map[Kind]bool)
			nullable bool
			nested   []Row
		)
		for _, row := range rows {
			v, ok := row.Get(key)
			if !ok || v.IsNullish() {
				nullable = true
				continue
			}
			kinds[v.Kind()] = true
			if obj, ok := v.AsMapping(); ok {
				nested = append(nested, obj)
			}
		}

		// A group of mappings describes its leaves, not itself
		if len(kinds) == 1 && kinds[KindMapping] && len(UniqueKeys(nested)) > 0 {
			children := describeRows(nested, name)
			if nullable {
				for i := range children {
					children[i].Nullable = true
				}
			}
			infos = append(infos, children...)
			continue
		}

		infos = append(infos, ColumnInfo{
			Name:     name,
			Type:     typeName(kinds),
			Nullable: nullable,
			Repeated: kinds[KindSequence],
		})
	}
	return infos
}

func typeName(kinds map[Kind]bool) string {
	switch len(kinds) {
	case 0:
		return "NULL"
	case 1:
		for k := range kinds {
			switch k {
			case KindBool:
				return "BOOLEAN"
			case KindNumber:
				return "NUMBER"
			case KindString:
				return "STRING"
			case KindSequence:
				return "ARRAY"
			case KindMapping:
				return "OBJECT"
			}
		}
	}
	return "MIXED"
}
