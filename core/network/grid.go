package network

// Grid is an in-memory Model. Elements are appended through the Add methods,
// which return the element index.
type Grid struct {
	BusList         []Bus         `json:"buses" yaml:"buses"`
	SourceList      []Source      `json:"sources" yaml:"sources"`
	LineList        []Line        `json:"lines" yaml:"lines"`
	TransformerList []Transformer `json:"transformers" yaml:"transformers"`
	LoadList        []Load        `json:"loads" yaml:"loads"`
}

// NewGrid returns an empty grid.
func NewGrid() *Grid { return &Grid{} }

func (g *Grid) Buses() []Bus                { return g.BusList }
func (g *Grid) Sources() []Source           { return g.SourceList }
func (g *Grid) Lines() []Line               { return g.LineList }
func (g *Grid) Transformers() []Transformer { return g.TransformerList }
func (g *Grid) Loads() []Load               { return g.LoadList }

// AddBus appends a bus and returns its index.
func (g *Grid) AddBus(name string, vnKV float64) int {
	i := len(g.BusList)
	g.BusList = append(g.BusList, Bus{Index: i, Name: name, VnKV: vnKV})
	return i
}

// AddSource appends an external grid feeder.
func (g *Grid) AddSource(s Source) int {
	g.SourceList = append(g.SourceList, s)
	return len(g.SourceList) - 1
}

// AddLine appends a line.
func (g *Grid) AddLine(l Line) int {
	g.LineList = append(g.LineList, l)
	return len(g.LineList) - 1
}

// AddTransformer appends a two-winding transformer.
func (g *Grid) AddTransformer(t Transformer) int {
	g.TransformerList = append(g.TransformerList, t)
	return len(g.TransformerList) - 1
}

// AddLoad appends a load.
func (g *Grid) AddLoad(l Load) int {
	g.LoadList = append(g.LoadList, l)
	return len(g.LoadList) - 1
}

// BusByName returns the index of the named bus.
func (g *Grid) BusByName(name string) (int, bool) {
	for _, b := range g.BusList {
		if b.Name == name {
			return b.Index, true
		}
	}
	return -1, false
}
