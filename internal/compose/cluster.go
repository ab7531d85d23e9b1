// Package compose turns an analyzed media pool into a validated timeline:
// clustering, beat/energy synchronization, timeline building, and structured
// edit application. Everything here is pure and deterministic — no
// collaborator calls, no randomness — so identical inputs always produce
// byte-identical timelines.
package compose

import (
	"github.com/memoryreel/memoryreel/internal/models"
)

// Cluster is a transient grouping of media sharing a capture day and a
// dominant subject tag. Clusters exist only within one composition pass.
type Cluster struct {
	Theme       string
	TimeKey     string
	Items       []models.MediaItem
	EnergyLevel float64 // mean aesthetic score of members
}

// unknownTimeKey buckets media without capture metadata.
const unknownTimeKey = "unknown"

// FilterUsable drops media that cannot appear on a timeline: visual items
// without visual analysis and items scoring below the aesthetic floor.
func FilterUsable(pool []models.MediaItem, minAestheticScore float64) []models.MediaItem {
	usable := make([]models.MediaItem, 0, len(pool))
	for _, m := range pool {
		if m.Type != models.MediaTypeImage && m.Type != models.MediaTypeVideo {
			continue
		}
		if m.Visual == nil {
			continue
		}
		if m.Visual.AestheticScore < minAestheticScore {
			continue
		}
		usable = append(usable, m)
	}
	return usable
}

// ClusterMedia groups items first by capture day, then by each item's
// highest-confidence tag. Group order follows first appearance in the input,
// so the result is deterministic for a given pool order. An empty input
// yields an empty cluster list; that is the builder's problem to reject.
func ClusterMedia(items []models.MediaItem) []Cluster {
	type groupKey struct {
		timeKey string
		theme   string
	}

	groups := make(map[groupKey][]models.MediaItem)
	order := make([]groupKey, 0, len(items))

	for _, m := range items {
		key := groupKey{timeKey: timeKeyFor(m), theme: m.PrimaryTag()}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], m)
	}

	clusters := make([]Cluster, 0, len(order))
	for _, key := range order {
		members := groups[key]
		clusters = append(clusters, Cluster{
			Theme:       key.theme,
			TimeKey:     key.timeKey,
			Items:       members,
			EnergyLevel: clusterEnergy(members),
		})
	}
	return clusters
}

// timeKeyFor truncates the capture timestamp to the day. Items without
// capture metadata share a single bucket.
func timeKeyFor(m models.MediaItem) string {
	if m.CaptureTime == "" {
		return unknownTimeKey
	}
	if len(m.CaptureTime) > 10 {
		return m.CaptureTime[:10]
	}
	return m.CaptureTime
}

// clusterEnergy is the mean aesthetic score of the members with visual
// analysis, defaulting to a neutral 0.5 when no member carries a score.
func clusterEnergy(items []models.MediaItem) float64 {
	sum, count := 0.0, 0
	for _, m := range items {
		if m.Visual != nil {
			sum += m.Visual.AestheticScore
			count++
		}
	}
	if count == 0 {
		return 0.5
	}
	return sum / float64(count)
}
