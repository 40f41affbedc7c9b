package store

import (
	"context"
	"sort"
	"strings"

	"travel-bot/models"

	"github.com/lib/pq"
)

// knownDestinations are the place names counted in user messages.
var knownDestinations = []string{
	"墾丁", "花蓮", "台東", "宜蘭", "南投", "阿里山", "日月潭", "清境", "九份", "淡水",
	"台北", "新北", "桃園", "新竹", "苗栗", "台中", "彰化", "雲林", "嘉義", "台南", "高雄", "屏東",
	"太魯閣", "七星潭", "東海岸", "綠島", "蘭嶼", "小琉球", "澎湖", "金門", "馬祖",
	"陽明山", "北投", "西門町", "信義區", "士林", "大稻埕", "貓空",
	"合歡山", "武嶺", "玉山", "雪山", "奇萊", "能高",
}

// defaultDestinations top up the ranking when users mentioned too few places.
var defaultDestinations = []string{
	"墾丁", "花蓮", "台東", "宜蘭", "南投", "阿里山", "日月潭", "九份", "淡水", "太魯閣",
}

// PopularDestinations ranks known destinations by how many user messages
// mention them. A region narrows the messages to those mentioning a related
// destination (or the region itself when nothing is related).
func (s *Store) PopularDestinations(ctx context.Context, region string, limit int) ([]models.PopularDestination, error) {
	if limit <= 0 {
		limit = 10
	}

	query := "SELECT content FROM messages WHERE role = 'user'"
	var args []any
	if region != "" {
		args = append(args, pq.Array(likePatterns(relatedDestinations(region))))
		query += " AND content ILIKE ANY($1)"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("popular destinations", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, wrap("scan message content", err)
		}
		for _, dest := range knownDestinations {
			if strings.Contains(content, dest) {
				counts[dest]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate message content", err)
	}

	return rankDestinations(counts, limit), nil
}

func relatedDestinations(region string) []string {
	var related []string
	for _, dest := range knownDestinations {
		if strings.Contains(dest, region) || strings.Contains(region, dest) {
			related = append(related, dest)
		}
	}
	if len(related) == 0 {
		related = append(related, region)
	}
	return related
}

func likePatterns(keywords []string) []string {
	escaper := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	patterns := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		patterns = append(patterns, "%"+escaper.Replace(kw)+"%")
	}
	return patterns
}

func rankDestinations(counts map[string]int, limit int) []models.PopularDestination {
	ranked := make([]models.PopularDestination, 0, len(counts))
	for _, dest := range knownDestinations {
		if n := counts[dest]; n > 0 {
			ranked = append(ranked, models.PopularDestination{Name: dest, Count: n})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	seen := make(map[string]bool, len(ranked))
	for _, d := range ranked {
		seen[d.Name] = true
	}
	for _, name := range defaultDestinations {
		if len(ranked) >= limit {
			break
		}
		if !seen[name] {
			ranked = append(ranked, models.PopularDestination{Name: name})
		}
	}
	return ranked
}
