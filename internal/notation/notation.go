// Package notation reads and writes moves and game records in a compact
// text form: "c3", "Sc3", "Cc3" for placements and "3c3>12" for stack moves.
package notation

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/crasshacker/STak-sub000/internal/game"
)

// Format renders m. Flat placements carry no prefix; stack moves always
// spell out the count and every drop.
func Format(m game.Move) string {
	switch mv := m.(type) {
	case *game.PlacementMove:
		switch mv.Kind() {
		case game.Standing:
			return "S" + mv.Target.String()
		case game.Cap:
			return "C" + mv.Target.String()
		}
		return mv.Target.String()
	case *game.StackMove:
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d%s%s", mv.Count, mv.Start, mv.Dir.Symbol())
		for _, d := range mv.DropCounts() {
			sb.WriteString(strconv.Itoa(d))
		}
		return sb.String()
	}
	return "?"
}

var dirBySymbol = map[byte]game.Direction{
	'+': game.North,
	'-': game.South,
	'>': game.East,
	'<': game.West,
}

// Parse reads one move. The stone count of a stack move defaults to 1 and
// the drop list defaults to dropping everything on the next cell.
func Parse(s string) (game.Move, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty move")
	}

	// strip annotation marks such as "?" or "'"
	s = strings.TrimRight(s, "?!'\"*")
	if s == "" {
		return nil, fmt.Errorf("empty move")
	}

	kind := game.Flat
	switch s[0] {
	case 'F':
		s = s[1:]
	case 'S':
		kind, s = game.Standing, s[1:]
	case 'C':
		kind, s = game.Cap, s[1:]
	}

	count := 0
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		count = count*10 + int(s[i]-'0')
		i++
	}
	if i+2 > len(s) {
		return nil, fmt.Errorf("invalid move %q", s)
	}

	// the cell is a letter followed by a single digit rank
	cell, err := game.ParseCoord(s[i : i+2])
	if err != nil {
		return nil, fmt.Errorf("invalid move %q: %w", s, err)
	}
	rest := s[i+2:]

	if rest == "" {
		if i > 0 {
			return nil, fmt.Errorf("invalid move %q: count without direction", s)
		}
		return game.NewPlacement(cell, kind), nil
	}
	if kind != game.Flat {
		return nil, fmt.Errorf("invalid move %q: stone kind on a stack move", s)
	}

	dir, ok := dirBySymbol[rest[0]]
	if !ok {
		return nil, fmt.Errorf("invalid move %q: unknown direction %q", s, rest[0])
	}
	if count == 0 {
		count = 1
	}
	var drops []int
	total := 0
	for _, ch := range rest[1:] {
		if ch < '1' || ch > '9' {
			return nil, fmt.Errorf("invalid move %q: bad drop %q", s, ch)
		}
		d := int(ch - '0')
		drops = append(drops, d)
		total += d
	}
	if len(drops) == 0 {
		drops, total = []int{count}, count
	}
	if total != count {
		return nil, fmt.Errorf("invalid move %q: drops sum to %d, not %d", s, total, count)
	}
	return game.NewStackMove(cell, dir, drops...), nil
}

// Record is a parsed game: header tags plus the move list.
type Record struct {
	Tags  map[string]string
	Moves []game.Move
}

// Size returns the board size from the Size tag, or 0.
func (r *Record) Size() int {
	n, _ := strconv.Atoi(r.Tags["Size"])
	return n
}

// FormatGame writes tags in sorted order, then one ply per line.
func FormatGame(tags map[string]string, moves []game.Move) string {
	var sb strings.Builder
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "[%s %q]\n", k, tags[k])
	}
	if len(keys) > 0 {
		sb.WriteString("\n")
	}
	for _, m := range moves {
		sb.WriteString(Format(m))
		sb.WriteString("\n")
	}
	return sb.String()
}

// ParseGame reads a record written by FormatGame. It also accepts several
// moves per line, move numbers ("1."), "{...}" comments and result tokens.
func ParseGame(r io.Reader) (*Record, error) {
	rec := &Record{Tags: make(map[string]string)}
	sc := bufio.NewScanner(r)
	line := 0
	inComment := false
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if !inComment && strings.HasPrefix(text, "[") {
			k, v, err := parseTag(text)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			rec.Tags[k] = v
			continue
		}
		for _, tok := range strings.Fields(text) {
			if inComment {
				if strings.HasSuffix(tok, "}") {
					inComment = false
				}
				continue
			}
			if strings.HasPrefix(tok, "{") {
				inComment = !strings.HasSuffix(tok, "}")
				continue
			}
			if skipToken(tok) {
				continue
			}
			m, err := Parse(tok)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			rec.Moves = append(rec.Moves, m)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rec, nil
}

// ReadFile parses the record stored at path.
func ReadFile(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseGame(f)
}

// WriteFile stores a record at path.
func WriteFile(path string, tags map[string]string, moves []game.Move) error {
	return os.WriteFile(path, []byte(FormatGame(tags, moves)), 0o644)
}

func parseTag(text string) (string, string, error) {
	if !strings.HasSuffix(text, "]") {
		return "", "", fmt.Errorf("unterminated tag %q", text)
	}
	body := strings.TrimSpace(text[1 : len(text)-1])
	key, raw, ok := strings.Cut(body, " ")
	if !ok {
		return "", "", fmt.Errorf("tag %q has no value", text)
	}
	val, err := strconv.Unquote(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("tag %q: %w", text, err)
	}
	return key, val, nil
}

// skipToken reports move numbers and result markers.
func skipToken(tok string) bool {
	if strings.HasSuffix(tok, ".") {
		_, err := strconv.Atoi(strings.TrimSuffix(tok, "."))
		return err == nil
	}
	switch tok {
	case "R-0", "0-R", "F-0", "0-F", "1-0", "0-1", "1/2-1/2", "0-0":
		return true
	}
	return false
}
