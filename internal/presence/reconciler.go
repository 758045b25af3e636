package presence

import (
	"context"
	"fmt"
	"staffping/internal/models"
	"staffping/internal/providers"
	"staffping/internal/structures"
	"strings"
)

// Result is one cycle's reconciled presence picture.
type Result struct {
	// Names is the deduplicated union of both feeds, map feed first.
	Names []string
	// Identities maps stable ids of resolved online players to their
	// current display names.
	Identities map[string]string
	// Staff is the subset of the roster that is currently online.
	Staff []models.StaffEntry
	// Degraded names the feed that failed this cycle, or "" if both
	// responded.
	Degraded string
}

// Online reports whether the given stable id was observed online.
func (r *Result) Online(uuid string) bool {
	_, ok := r.Identities[strings.ToLower(uuid)]
	return ok
}

type ReconcilerInterface interface {
	ComputeOnline(ctx context.Context, roster []models.StaffEntry) (*Result, error)
}

// Reconciler merges the two live-presence feeds into one online set. The
// feeds overlap but each sees players the other misses (the probe reports
// players the map hides as vanished, the map shows stragglers the probe's
// sample dropped), so the union approximates true visibility.
type Reconciler struct {
	mapFeed  Feed
	probe    Feed
	resolver ResolverInterface
	logger   providers.Logger
}

func NewReconciler(conf *structures.Config, resolver ResolverInterface, logger providers.Logger) ReconcilerInterface {
	return &Reconciler{
		mapFeed:  NewMapFeed(conf),
		probe:    NewStatusProbe(conf),
		resolver: resolver,
		logger:   logger,
	}
}

// NewReconcilerWithFeeds wires explicit feeds, for tests and alternate
// deployments.
func NewReconcilerWithFeeds(mapFeed, probe Feed, resolver ResolverInterface, logger providers.Logger) ReconcilerInterface {
	return &Reconciler{mapFeed: mapFeed, probe: probe, resolver: resolver, logger: logger}
}

func (r *Reconciler) ComputeOnline(ctx context.Context, roster []models.StaffEntry) (*Result, error) {
	mapNames, mapErr := r.mapFeed.Names(ctx)
	probeNames, probeErr := r.probe.Names(ctx)

	if mapErr != nil && probeErr != nil {
		return nil, fmt.Errorf("both presence feeds failed: map: %v; probe: %v", mapErr, probeErr)
	}

	res := &Result{Identities: make(map[string]string)}

	// One feed down is a soft degradation: presence from the survivor is
	// still real presence, and failing the cycle would freeze notifications
	// entirely.
	switch {
	case mapErr != nil:
		r.logger.Warnf(providers.TypeMonitor, "Map feed failed, continuing on probe only: %s", mapErr)
		res.Degraded = "map feed"
	case probeErr != nil:
		r.logger.Warnf(providers.TypeMonitor, "Status probe failed, continuing on map feed only: %s", probeErr)
		res.Degraded = "status probe"
	}

	seen := make(map[string]struct{})
	for _, name := range mapNames {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		res.Names = append(res.Names, name)
	}
	for _, name := range probeNames {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		res.Names = append(res.Names, name)
	}

	profiles, err := r.resolver.Resolve(ctx, res.Names)
	if err != nil {
		return nil, fmt.Errorf("resolve online names: %w", err)
	}
	for _, p := range profiles {
		res.Identities[strings.ToLower(p.ID)] = p.Name
	}

	for _, entry := range roster {
		if res.Online(entry.UUID) {
			res.Staff = append(res.Staff, entry)
		}
	}

	return res, nil
}
