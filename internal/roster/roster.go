// Package roster holds the ordered list of tracked players.
package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Player is a tracked name plus the nicknames sellers use for it.
type Player struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Sport   string   `json:"sport,omitempty"`
}

// Default returns the built-in basketball roster. Order matters: when two
// entries could match the same title the earlier one wins, so players who
// share a surname are listed with the more traded name first.
func Default() []Player {
	return []Player{
		{Name: "Victor Wembanyama", Aliases: []string{"wemby", "wemb"}, Sport: "basketball"},
		{Name: "Shai Gilgeous-Alexander", Aliases: []string{"sga", "shai"}, Sport: "basketball"},
		{Name: "Anthony Edwards", Aliases: []string{"ant", "ant-man", "ant man"}, Sport: "basketball"},
		{Name: "Luka Doncic", Aliases: []string{"luka"}, Sport: "basketball"},
		{Name: "LeBron James", Aliases: []string{"lebron", "bron"}, Sport: "basketball"},
		{Name: "Stephen Curry", Aliases: []string{"steph"}, Sport: "basketball"},
		{Name: "Giannis Antetokounmpo", Aliases: []string{"giannis", "greek freak"}, Sport: "basketball"},
		{Name: "Chet Holmgren", Aliases: []string{"chet"}, Sport: "basketball"},
		{Name: "Paolo Banchero", Aliases: []string{"paolo"}, Sport: "basketball"},
		{Name: "Cooper Flagg", Aliases: []string{"flagg"}, Sport: "basketball"},
		{Name: "Jalen Brunson", Sport: "basketball"},
		{Name: "Jalen Williams", Aliases: []string{"jdub"}, Sport: "basketball"},
		{Name: "Jalen Green", Sport: "basketball"},
		{Name: "Tyrese Haliburton", Aliases: []string{"hali"}, Sport: "basketball"},
		{Name: "Scoot Henderson", Aliases: []string{"scoot"}, Sport: "basketball"},
		{Name: "Brandon Miller", Sport: "basketball"},
		{Name: "Amen Thompson", Sport: "basketball"},
		{Name: "Ausar Thompson", Sport: "basketball"},
		{Name: "Stephon Castle", Sport: "basketball"},
		{Name: "Zaccharie Risacher", Aliases: []string{"risacher"}, Sport: "basketball"},
		{Name: "Caitlin Clark", Sport: "basketball"},
	}
}

// Load reads a JSON array of players. The file order is kept.
func Load(path string) ([]Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var players []Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	if err := Validate(players); err != nil {
		return nil, err
	}
	return players, nil
}

// Validate rejects empty and duplicate names.
func Validate(players []Player) error {
	if len(players) == 0 {
		return fmt.Errorf("roster is empty")
	}

	seen := make(map[string]bool, len(players))
	for i, p := range players {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if key == "" {
			return fmt.Errorf("roster entry %d has no name", i)
		}
		if seen[key] {
			return fmt.Errorf("duplicate roster entry %q", p.Name)
		}
		seen[key] = true
	}
	return nil
}

// Select returns the roster entries named in names, in roster order.
// Unknown names are reported as an error.
func Select(players []Player, names []string) ([]Player, error) {
	if len(names) == 0 {
		return players, nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(strings.TrimSpace(n))] = true
	}

	var out []Player
	for _, p := range players {
		key := strings.ToLower(p.Name)
		if want[key] {
			out = append(out, p)
			delete(want, key)
		}
	}

	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for n := range want {
			missing = append(missing, n)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("unknown players: %s", strings.Join(missing, ", "))
	}
	return out, nil
}
