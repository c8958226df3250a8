package navigation

import (
	"context"

	"github.com/birnsj/Project9-V1-sub002/logging"
)

const (
	// EventPathFailed is emitted when a search ends without a path.
	EventPathFailed logging.EventType = "nav.path_failed"
	// EventEndpointUnresolved is emitted when a blocked start or goal cell has no unblocked neighbour within the substitution radius.
	EventEndpointUnresolved logging.EventType = "nav.endpoint_unresolved"
	// EventStuckReroute is emitted when an agent made no progress for longer than its stuck threshold and requested a fresh path.
	EventStuckReroute logging.EventType = "nav.stuck_reroute"
	// EventCacheEvicted is emitted when the path cache cleanup removes stale entries.
	EventCacheEvicted logging.EventType = "nav.cache_evicted"
)

// PathFailedPayload describes a failed search.
type PathFailedPayload struct {
	Reason     string  `json:"reason"`
	StartX     float64 `json:"startX"`
	StartY     float64 `json:"startY"`
	GoalX      float64 `json:"goalX"`
	GoalY      float64 `json:"goalY"`
	Iterations int     `json:"iterations"`
	Cached     bool    `json:"cached,omitempty"`
}

// EndpointUnresolvedPayload identifies the cell that could not be substituted.
type EndpointUnresolvedPayload struct {
	Endpoint string `json:"endpoint"`
	CellX    int    `json:"cellX"`
	CellY    int    `json:"cellY"`
	Radius   int    `json:"radius"`
}

// StuckReroutePayload captures the position an agent was stuck at.
type StuckReroutePayload struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	TargetX      float64 `json:"targetX"`
	TargetY      float64 `json:"targetY"`
	StuckSeconds float64 `json:"stuckSeconds"`
}

// CacheEvictedPayload reports a cleanup pass.
type CacheEvictedPayload struct {
	Evicted   int `json:"evicted"`
	Remaining int `json:"remaining"`
}

// PathFailed publishes a debug event for a failed search.
func PathFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PathFailedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPathFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}

// EndpointUnresolved publishes a warning when endpoint substitution fails.
func EndpointUnresolved(ctx context.Context, pub logging.Publisher, tick uint64, payload EndpointUnresolvedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEndpointUnresolved,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}

// StuckReroute publishes an info event when movement stalls.
func StuckReroute(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload StuckReroutePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStuckReroute,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}

// CacheEvicted publishes a debug event after a cache cleanup pass.
func CacheEvicted(ctx context.Context, pub logging.Publisher, tick uint64, payload CacheEvictedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCacheEvicted,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindSystem},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}
