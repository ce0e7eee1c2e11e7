// Package graph derives a network view of users, reports, scam communities
// and alerts for investigative dashboards. Read-only projection; nothing here
// feeds back into scoring or enforcement.
package graph

import (
	"context"

	"github.com/scamshield-ai/scamshield/internal/alerts"
	"github.com/scamshield-ai/scamshield/internal/reports"
)

// Node types
const (
	NodeUser      = "user"
	NodeReport    = "report"
	NodeCommunity = "community"
	NodeAlert     = "alert"
)

// Edge relations
const (
	EdgeSubmitted      = "submitted"
	EdgeBelongsTo      = "belongs_to"
	EdgeTriggeredAlert = "triggered_alert"
)

// defaultCorpusLimit bounds how many recent reports one projection covers
const defaultCorpusLimit = 500

// Node is one vertex in the fraud network
type Node struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// Edge is one directed relation in the fraud network
type Edge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Relation string `json:"relation"`
}

// Graph is the derived network view
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// ReportSource provides the recent report corpus
type ReportSource interface {
	ListReports(ctx context.Context, limit, offset int) ([]*reports.Report, error)
}

// AlertSource provides the active alerts
type AlertSource interface {
	ListActive(ctx context.Context, audience string, limit, offset int) ([]*alerts.Alert, error)
}

// Builder assembles the fraud network graph
type Builder struct {
	reports ReportSource
	alerts  AlertSource
	limit   int
}

// NewBuilder creates a graph builder over the given sources
func NewBuilder(reportSource ReportSource, alertSource AlertSource) *Builder {
	return &Builder{reports: reportSource, alerts: alertSource, limit: defaultCorpusLimit}
}

// Build derives the graph from recent reports and active alerts. Scam-type
// groupings form the community nodes; a report belongs to the community of
// its scam type.
func (b *Builder) Build(ctx context.Context) (*Graph, error) {
	recent, err := b.reports.ListReports(ctx, b.limit, 0)
	if err != nil {
		return nil, err
	}

	active, err := b.alerts.ListActive(ctx, "", b.limit, 0)
	if err != nil {
		return nil, err
	}

	graph := &Graph{Nodes: []Node{}, Edges: []Edge{}}
	seen := make(map[string]bool)

	addNode := func(node Node) {
		if !seen[node.ID] {
			seen[node.ID] = true
			graph.Nodes = append(graph.Nodes, node)
		}
	}

	reportIDs := make(map[string]bool, len(recent))
	for _, report := range recent {
		reportID := report.ID.String()
		reportIDs[reportID] = true
		addNode(Node{ID: reportID, Type: NodeReport, Label: report.Title})

		if report.ReportedBy != nil {
			userID := report.ReportedBy.String()
			addNode(Node{ID: userID, Type: NodeUser, Label: "user " + shortID(userID)})
			graph.Edges = append(graph.Edges, Edge{From: userID, To: reportID, Relation: EdgeSubmitted})
		}

		if report.ScamType != "" {
			communityID := "community:" + report.ScamType
			addNode(Node{ID: communityID, Type: NodeCommunity, Label: report.ScamType})
			graph.Edges = append(graph.Edges, Edge{From: reportID, To: communityID, Relation: EdgeBelongsTo})
		}
	}

	for _, alert := range active {
		alertID := alert.ID.String()
		addNode(Node{ID: alertID, Type: NodeAlert, Label: alert.Title})

		// Alerts outside the report window stay as isolated nodes.
		if alert.ReportID != nil && reportIDs[alert.ReportID.String()] {
			graph.Edges = append(graph.Edges, Edge{From: alert.ReportID.String(), To: alertID, Relation: EdgeTriggeredAlert})
		}
	}

	return graph, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
