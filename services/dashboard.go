package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"civicecho-be/models"
)

// PriorityLimit caps the priority ranking.
const PriorityLimit = 20

// Stats are frequency counts over all complaints. A complaint with an empty
// field is left out of that field's breakdown.
type Stats struct {
	TotalComplaints int            `json:"totalComplaints"`
	TotalClusters   int64          `json:"totalClusters"`
	ByStatus        map[string]int `json:"byStatus"`
	ByCategory      map[string]int `json:"byCategory"`
	BySeverity      map[string]int `json:"bySeverity"`
}

// HeatPoint is one weighted map marker.
type HeatPoint struct {
	Lat      float64                  `json:"lat"`
	Lng      float64                  `json:"lng"`
	Weight   int                      `json:"weight"`
	Severity models.Severity          `json:"severity"`
	Category models.ComplaintCategory `json:"category"`
}

// ComputeStats counts complaints by status, category and severity.
func ComputeStats(complaints []models.Complaint, totalClusters int64) Stats {
	st := Stats{
		TotalComplaints: len(complaints),
		TotalClusters:   totalClusters,
		ByStatus:        map[string]int{},
		ByCategory:      map[string]int{},
		BySeverity:      map[string]int{},
	}
	for i := range complaints {
		c := &complaints[i]
		if c.Status != "" {
			st.ByStatus[string(c.Status)]++
		}
		if c.Category != "" {
			st.ByCategory[string(c.Category)]++
		}
		if c.Severity != "" {
			st.BySeverity[string(c.Severity)]++
		}
	}
	return st
}

func severityWeight(s models.Severity) int {
	switch strings.ToUpper(string(s)) {
	case "CRITICAL":
		return 3
	case "HIGH":
		return 2
	case "MEDIUM":
		return 1
	}
	return 0
}

// PriorityScore weights severity far above upvotes.
func PriorityScore(c *models.Complaint) int {
	return severityWeight(c.Severity)*1000 + c.Upvotes
}

// RankByPriority drops closed complaints, orders the rest by PriorityScore
// descending (stable for equal scores) and keeps the first PriorityLimit.
func RankByPriority(complaints []models.Complaint) []models.Complaint {
	ranked := make([]models.Complaint, 0, len(complaints))
	for i := range complaints {
		if complaints[i].Status != models.StatusClosed {
			ranked = append(ranked, complaints[i])
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return PriorityScore(&ranked[i]) > PriorityScore(&ranked[j])
	})
	if len(ranked) > PriorityLimit {
		ranked = ranked[:PriorityLimit]
	}
	return ranked
}

// BuildHeatmap turns complaints into map markers weighted by upvotes, with a
// floor of one. Complaints without coordinates are skipped.
func BuildHeatmap(complaints []models.Complaint) []HeatPoint {
	points := make([]HeatPoint, 0, len(complaints))
	for i := range complaints {
		c := &complaints[i]
		if c.Latitude == 0 || c.Longitude == 0 {
			continue
		}
		weight := c.Upvotes
		if weight <= 0 {
			weight = 1
		}
		points = append(points, HeatPoint{
			Lat:      c.Latitude,
			Lng:      c.Longitude,
			Weight:   weight,
			Severity: c.Severity,
			Category: c.Category,
		})
	}
	return points
}

// Dashboard serves the aggregate read models.
type Dashboard struct {
	complaints ComplaintStore
	clusters   ClusterStore
}

// NewDashboard returns a Dashboard over the given stores.
func NewDashboard(complaints ComplaintStore, clusters ClusterStore) *Dashboard {
	return &Dashboard{complaints: complaints, clusters: clusters}
}

// Stats counts every complaint and cluster.
func (d *Dashboard) Stats(ctx context.Context) (Stats, error) {
	all, err := d.all(ctx)
	if err != nil {
		return Stats{}, err
	}
	total, err := d.clusters.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count clusters: %w", err)
	}
	return ComputeStats(all, total), nil
}

// Priority returns the top complaints by PriorityScore.
func (d *Dashboard) Priority(ctx context.Context) ([]models.Complaint, error) {
	all, err := d.all(ctx)
	if err != nil {
		return nil, err
	}
	return RankByPriority(all), nil
}

// Heatmap returns weighted markers for every located complaint.
func (d *Dashboard) Heatmap(ctx context.Context) ([]HeatPoint, error) {
	all, err := d.all(ctx)
	if err != nil {
		return nil, err
	}
	return BuildHeatmap(all), nil
}

// Cluster returns the cluster with the given id.
func (d *Dashboard) Cluster(ctx context.Context, id string) (*models.Cluster, error) {
	c, err := d.clusters.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load cluster %s: %w", id, err)
	}
	return c, nil
}

func (d *Dashboard) all(ctx context.Context) ([]models.Complaint, error) {
	all, err := d.complaints.List(ctx, models.ComplaintFilter{})
	if err != nil {
		return nil, fmt.Errorf("load complaints: %w", err)
	}
	return all, nil
}
