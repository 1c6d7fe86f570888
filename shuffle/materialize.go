package shuffle

import "context"

// Materialize loads the rows for ids in one batch and projects them in the
// order of ids. Rows the source no longer returns are skipped; missing reports
// how many were skipped.
func Materialize[T any, ID comparable, R any](ctx context.Context, src Source[T, ID], ids []ID, project func(T) R) (items []R, missing int, err error) {
	items = make([]R, 0, len(ids))
	if len(ids) == 0 {
		return items, 0, nil
	}

	rows, err := src.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[ID]T, len(rows))
	for _, row := range rows {
		id := src.IDOf(row)
		if _, seen := byID[id]; !seen {
			byID[id] = row
		}
	}

	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			missing++
			continue
		}
		items = append(items, project(row))
	}

	return items, missing, nil
}
