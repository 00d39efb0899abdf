package services

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/logan-wrld/austin-port-to-rail/config"
)

// RailNode is one row of the railroad node feed.
type RailNode struct {
	ObjectID         string
	NodeID           string
	Country          string
	State            string
	CountyFIPS       string
	District         string
	PassengerStation string
	Boundary         bool
	X                float64
	Y                float64
}

// RailLine is one row of either line feed (comma or tab delimited).
type RailLine struct {
	State    string
	Miles    float64
	Owner    string
	District string
}

type OwnerCount struct {
	Owner string
	Count int
}

// TopologySummary is the condensed topology context handed to the
// stress orchestrator.
type TopologySummary struct {
	NodeCount         int
	PassengerStations int
	BoundaryNodes     int
	SampleNodes       []RailNode
	TotalMiles        float64
	OwnerCounts       []OwnerCount
	SampleLines       []RailLine
}

// TopologyService reads the optional railroad node/line feeds. Missing
// files and malformed rows are tolerated: the orchestrator works with
// whatever topology context is available, down to none at all.
type TopologyService struct {
	nodesPath string
	linesPath string
	texasPath string
}

func NewTopologyService(cfg config.DataConfig) *TopologyService {
	return &TopologyService{
		nodesPath: cfg.NodesPath(),
		linesPath: cfg.LinesPath(),
		texasPath: cfg.TexasPath(),
	}
}

const (
	sampleNodeLimit = 10
	sampleLineLimit = 5
	ownerCountLimit = 10
)

// Summarize loads both feeds and condenses the rows for one state.
func (s *TopologyService) Summarize(state string) TopologySummary {
	var summary TopologySummary

	for _, n := range s.loadNodes() {
		if state != "" && n.State != state {
			continue
		}
		summary.NodeCount++
		if n.PassengerStation != "" {
			summary.PassengerStations++
		}
		if n.Boundary {
			summary.BoundaryNodes++
		}
		if len(summary.SampleNodes) < sampleNodeLimit {
			summary.SampleNodes = append(summary.SampleNodes, n)
		}
	}

	owners := map[string]int{}
	lines := append(s.loadLines(s.linesPath, ','), s.loadLines(s.texasPath, '\t')...)
	for _, l := range lines {
		if state != "" && l.State != state {
			continue
		}
		summary.TotalMiles += l.Miles
		if l.Owner != "" {
			owners[l.Owner]++
		}
		if len(summary.SampleLines) < sampleLineLimit {
			summary.SampleLines = append(summary.SampleLines, l)
		}
	}

	for owner, count := range owners {
		summary.OwnerCounts = append(summary.OwnerCounts, OwnerCount{Owner: owner, Count: count})
	}
	sort.Slice(summary.OwnerCounts, func(i, j int) bool {
		if summary.OwnerCounts[i].Count != summary.OwnerCounts[j].Count {
			return summary.OwnerCounts[i].Count > summary.OwnerCounts[j].Count
		}
		return summary.OwnerCounts[i].Owner < summary.OwnerCounts[j].Owner
	})
	if len(summary.OwnerCounts) > ownerCountLimit {
		summary.OwnerCounts = summary.OwnerCounts[:ownerCountLimit]
	}

	return summary
}

func (s *TopologyService) loadNodes() []RailNode {
	rows, header := readCSV(s.nodesPath, ',')
	if rows == nil {
		return nil
	}

	col := columnIndex(header)
	var nodes []RailNode
	for _, row := range rows {
		objectID := field(row, col, "OBJECTID")
		if _, err := strconv.Atoi(objectID); err != nil {
			continue
		}
		nodes = append(nodes, RailNode{
			ObjectID:         objectID,
			NodeID:           field(row, col, "FRANODEID"),
			Country:          field(row, col, "COUNTRY"),
			State:            field(row, col, "STATE"),
			CountyFIPS:       field(row, col, "CTYFIPS"),
			District:         field(row, col, "FRADISTRCT"),
			PassengerStation: field(row, col, "PASSNGRSTN"),
			Boundary:         field(row, col, "BNDRY") == "1",
			X:                parseFloat(field(row, col, "x")),
			Y:                parseFloat(field(row, col, "y")),
		})
	}
	return nodes
}

func (s *TopologyService) loadLines(path string, comma rune) []RailLine {
	rows, header := readCSV(path, comma)
	if rows == nil {
		return nil
	}

	col := columnIndex(header)
	var lines []RailLine
	for _, row := range rows {
		state := field(row, col, "STATEAB")
		owner := field(row, col, "RROWNER1")
		if state == "" && owner == "" {
			continue
		}
		lines = append(lines, RailLine{
			State:    state,
			Miles:    parseFloat(field(row, col, "MILES")),
			Owner:    owner,
			District: field(row, col, "FRADISTRCT"),
		})
	}
	return lines
}

// readCSV returns all data rows plus the header row, or nil when the
// file is absent or unreadable. Rows with the wrong field count come
// back as-is; callers skip what they cannot use.
func readCSV(path string, comma rune) ([][]string, []string) {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("topology feed %s unreadable: %v", path, err)
		}
		return nil, nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, nil
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Bad row, keep going.
			continue
		}
		rows = append(rows, row)
	}
	return rows, header
}

func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	return col
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[strings.ToUpper(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
