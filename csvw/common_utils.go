package csvw

import "fmt"

// blankNodeGenerator mints unique blank node IDs for row subjects that have
// no aboutUrl template, scoped to one Table.Rows iteration (row.go's
// tableContext.bnodes).
type blankNodeGenerator struct {
	counter int
}

func newBlankNodeGenerator() *blankNodeGenerator {
	return &blankNodeGenerator{}
}

// next returns the next blank node, formatted "b<row-subject-counter>".
func (g *blankNodeGenerator) next() BlankNode {
	g.counter++
	return BlankNode{ID: fmt.Sprintf("b%d", g.counter)}
}
