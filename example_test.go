package chatflow_test

import (
	"errors"
	"fmt"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/pkg/domain"
)

// ExampleNew builds a two-step flow, shows the out-degree gate rejecting a
// second outgoing edge and saves the result.
func ExampleNew() {
	ed := chatflow.New()

	greet, _ := ed.AddNode(domain.NodeTypeText, domain.Position{X: 0, Y: 0})
	photo, _ := ed.AddNode(domain.NodeTypeImage, domain.Position{X: 250, Y: 0})
	extra, _ := ed.AddNode(domain.NodeTypeText, domain.Position{X: 250, Y: 150})

	_, ok := ed.Connect(domain.Connection{Source: greet.ID, Target: photo.ID})
	fmt.Println("first edge:", ok)
	_, ok = ed.Connect(domain.Connection{Source: greet.ID, Target: extra.ID})
	fmt.Println("second edge from same source:", ok)

	report, err := ed.Save()
	fmt.Println(report.Message, errors.Is(err, domain.ErrMultipleDanglingStarts))

	ed.DeleteNodes(extra.ID)
	report, err = ed.Save()
	fmt.Println(report.Message, err == nil)

	// Output:
	// first edge: true
	// second edge from same source: false
	// Cannot save Flow true
	// Flow saved successfully true
}

// ExampleEditor_Undo shows that a rejected connection never reaches history.
func ExampleEditor_Undo() {
	ed := chatflow.New()
	a, _ := ed.AddNode(domain.NodeTypeText, domain.Position{})
	b, _ := ed.AddNode(domain.NodeTypeText, domain.Position{})
	ed.Connect(domain.Connection{Source: a.ID, Target: b.ID})
	ed.Connect(domain.Connection{Source: a.ID, Target: a.ID})

	for ed.Undo() {
		g := ed.Graph()
		fmt.Printf("nodes=%d edges=%d\n", len(g.Nodes), len(g.Edges))
	}

	// Output:
	// nodes=2 edges=0
	// nodes=1 edges=0
	// nodes=0 edges=0
}
