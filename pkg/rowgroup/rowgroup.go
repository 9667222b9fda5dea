package rowgroup

import "github.com/XavierBriggs/laxstat/pkg/models"

// MarkVisibility returns one flag per row: true when the row should render the
// team identity cells (logo + name), false when the previous row already did.
//
// Rows are expected to arrive sorted by team name, as the stats backend returns them.
// A team that reappears after another team is shown again.
func MarkVisibility(rows []models.TeamSeasonRow) []bool {
	return MarkVisibilityBy(rows, func(row models.TeamSeasonRow) string {
		return row.TeamName
	})
}

// MarkVisibilityBy applies the same adjacent-equality rule using key to name each row
func MarkVisibilityBy[T any](rows []T, key func(T) string) []bool {
	marks := make([]bool, len(rows))

	for i, row := range rows {
		// Exact comparison; names are not case- or whitespace-normalized
		marks[i] = i == 0 || key(row) != key(rows[i-1])
	}

	return marks
}

// Annotate pairs each row with its visibility mark
func Annotate(rows []models.TeamSeasonRow) []models.TeamRowView {
	marks := MarkVisibility(rows)
	views := make([]models.TeamRowView, len(rows))

	for i, row := range rows {
		views[i] = models.TeamRowView{
			TeamSeasonRow: row,
			ShowIdentity:  marks[i],
		}
	}

	return views
}
