//go:build ignore
// +build ignore

// seed_demo_repo.go populates a repository directory with demo projects,
// commit history, and a lineage graph for manual testing and screenshots.
// Usage: go run scripts/seed_demo_repo.go [dir]
//
// The default target is ./demo-repo. Re-running against the same directory
// appends nothing: project names are unique per repository.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vanderheijden86/lineweave/pkg/layout"
	"github.com/vanderheijden86/lineweave/pkg/model"
	"github.com/vanderheijden86/lineweave/pkg/repo"
	"github.com/vanderheijden86/lineweave/pkg/store"
)

type seedProject struct {
	name     string
	content  string
	commits  []string // older to newer draft states, committed in order
	mergedOf []string // names of upstream projects, drawn as lineage edges
}

var seeds = []seedProject{
	{
		name:    "Field Notes",
		content: "# Field Notes\n\nRaw observations from the first survey pass.",
		commits: []string{"# Field Notes\n\nFirst pass.", "# Field Notes\n\nRaw observations from the first survey pass."},
	},
	{
		name:    "Interviews",
		content: "# Interviews\n\nTranscribed conversations, lightly edited.",
		commits: []string{"# Interviews\n\nTranscripts, unedited."},
	},
	{
		name:    "Background Reading",
		content: "# Background Reading\n\nSummaries of the prior literature.",
	},
	{
		name:     "Draft Report",
		content:  "# Draft Report\n\nSynthesis of notes and interviews.",
		mergedOf: []string{"Field Notes", "Interviews"},
	},
	{
		name:     "Final Report",
		content:  "# Final Report\n\nEverything, assembled.",
		mergedOf: []string{"Draft Report", "Background Reading"},
	},
}

func main() {
	dir := "demo-repo"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", dir, err)
		os.Exit(1)
	}

	svc, err := repo.Open(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open repo: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	ctx := context.Background()
	byName := make(map[string]model.Project, len(seeds))

	for _, s := range seeds {
		fmt.Printf("Creating %q...\n", s.name)
		p, err := svc.CreateProject(ctx, s.name, s.content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create project %q: %v\n", s.name, err)
			os.Exit(1)
		}
		for _, draft := range s.commits {
			if _, err := svc.UpdateContent(ctx, p.ID, draft); err != nil {
				fmt.Fprintf(os.Stderr, "update %q: %v\n", s.name, err)
				os.Exit(1)
			}
			if _, err := svc.CommitProject(ctx, p.ID); err != nil {
				fmt.Fprintf(os.Stderr, "commit %q: %v\n", s.name, err)
				os.Exit(1)
			}
		}
		// Leave the final draft in place.
		if p, err = svc.UpdateContent(ctx, p.ID, s.content); err != nil {
			fmt.Fprintf(os.Stderr, "restore draft %q: %v\n", s.name, err)
			os.Exit(1)
		}
		byName[s.name] = p
	}

	projects, err := svc.ListProjects(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list projects: %v\n", err)
		os.Exit(1)
	}

	graph := store.New(layout.Engine{})
	graph.LoadProjects(model.GraphDoc{}, projects)
	for _, s := range seeds {
		for _, upstream := range s.mergedOf {
			from, to := byName[upstream], byName[s.name]
			if err := graph.AddEdge(from.ID, to.ID); err != nil {
				fmt.Fprintf(os.Stderr, "edge %q -> %q: %v\n", upstream, s.name, err)
				os.Exit(1)
			}
		}
	}

	if err := svc.DB().SaveGraphData(svc.Dir(), graph.Document()); err != nil {
		fmt.Fprintf(os.Stderr, "save graph: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d projects with %d lineage edges into %s\n",
		graph.NodeCount(), graph.EdgeCount(), dir)
	fmt.Printf("Run: lw --repo %s\n", dir)
}
