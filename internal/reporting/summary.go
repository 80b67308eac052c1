package reporting

import (
	"fmt"
	"strings"

	"steam-price-lab/internal/domain"
)

// RenderSummary renders processing_summary.txt: one "key: value" line per field.
func RenderSummary(s domain.Summary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("total_games_original: %d\n", s.TotalGamesOriginal))
	sb.WriteString(fmt.Sprintf("total_games_with_price_data: %d\n", s.TotalGamesWithPriceData))
	sb.WriteString(fmt.Sprintf("total_features_created: %d\n", s.TotalFeaturesCreated))
	sb.WriteString(fmt.Sprintf("data_processing_date: %s\n", s.ProcessedAt.Format(domain.SummaryTimeLayout)))
	if s.RunID != "" {
		sb.WriteString(fmt.Sprintf("run_id: %s\n", s.RunID))
	}
	return sb.String()
}
