package monitor

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/kcidb/kcidb-go/pkg/db"
	"github.com/kcidb/kcidb-go/pkg/logger"
	"github.com/kcidb/kcidb-go/pkg/report"
)

// Source provides the stored objects surrounding freshly loaded data.
// *db.Client implements it.
type Source interface {
	Query(ctx context.Context, req db.QueryRequest, objectsPerChunk int) iter.Seq2[report.Data, error]
	ObjectQuery(ctx context.Context, reqs []db.ObjectRequest) (map[string][]report.Object, error)
}

// Monitor matches loaded data against subscriptions.
type Monitor struct {
	source Source
	subs   []Subscription
	logger *slog.Logger
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets the monitor logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a Monitor over source with the given subscriptions.
func New(source Source, subs []Subscription, opts ...Option) (*Monitor, error) {
	if source == nil {
		return nil, ErrSourceNil
	}
	if err := validateSubscriptions(subs); err != nil {
		return nil, err
	}
	m := &Monitor{
		source: source,
		subs:   slices.Clone(subs),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("monitor"))
	return m, nil
}

// Match returns the notifications produced by data, which must already be
// stored in the source. Notifications are unique by ID and sorted by it.
func (m *Monitor) Match(ctx context.Context, data report.Data) ([]Notification, error) {
	checkoutIDs, buildIDs, err := m.affected(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(checkoutIDs) == 0 {
		return nil, nil
	}
	checkouts, err := m.assemble(ctx, checkoutIDs, buildIDs)
	if err != nil {
		return nil, err
	}

	builds := make(map[string]*Build)
	tests := make(map[string]*Test)
	for _, c := range checkouts {
		for _, b := range c.Builds {
			builds[b.ID] = b
			for _, t := range b.Tests {
				tests[t.ID] = t
			}
		}
	}

	byID := make(map[string]Notification)
	add := func(sub string, objType, objID, objSummary string, msgs []Message) {
		for _, msg := range msgs {
			n := Notification{
				ObjectType:    objType,
				ObjectID:      objID,
				ObjectSummary: objSummary,
				Subscription:  sub,
				Message:       msg,
			}
			byID[n.ID()] = n
		}
	}
	for _, sub := range m.subs {
		if sub.Checkout != nil {
			for _, c := range checkouts {
				add(sub.Name, "checkout", c.ID, c.Summary(), sub.Checkout(c))
			}
		}
		if sub.Build != nil {
			for _, obj := range data.Objects("builds") {
				if b, ok := builds[report.ID(obj)]; ok {
					add(sub.Name, "build", b.ID, b.Summary(), sub.Build(b))
				}
			}
		}
		if sub.Test != nil {
			for _, obj := range data.Objects("tests") {
				if t, ok := tests[report.ID(obj)]; ok {
					add(sub.Name, "test", t.ID, t.Summary(), sub.Test(t))
				}
			}
		}
	}

	out := make([]Notification, 0, len(byID))
	for _, n := range byID {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b Notification) int {
		return strings.Compare(a.ID(), b.ID())
	})
	m.logger.DebugContext(ctx, "data matched",
		logger.Count(len(out)),
		slog.Int("checkouts", len(checkouts)))
	return out, nil
}

// affected returns the sorted IDs of the checkouts whose subtree data
// touches, and of the builds it names. Builds of tests missing from data
// are looked up in the source.
func (m *Monitor) affected(ctx context.Context, data report.Data) (checkouts, builds []string, err error) {
	checkoutSet := make(map[string]bool)
	buildSet := make(map[string]bool)
	for _, c := range data.Objects("checkouts") {
		checkoutSet[report.ID(c)] = true
	}
	for _, b := range data.Objects("builds") {
		buildSet[report.ID(b)] = true
		checkoutSet[field(b, "checkout_id")] = true
	}

	var missing []string
	for _, t := range data.Objects("tests") {
		ref := field(t, "build_id")
		if ref == "" || buildSet[ref] {
			continue
		}
		buildSet[ref] = true
		missing = append(missing, ref)
	}
	if len(missing) > 0 {
		found, err := m.source.ObjectQuery(ctx, []db.ObjectRequest{{Type: "builds", IDs: missing}})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up test builds: %w", err)
		}
		for _, b := range found["builds"] {
			checkoutSet[field(b, "checkout_id")] = true
		}
	}
	return sortedKeys(checkoutSet), sortedKeys(buildSet), nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		if k != "" {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// assemble loads the checkouts with their builds and tests. Builds are
// requested directly too, as their checkout may not be stored yet.
func (m *Monitor) assemble(ctx context.Context, ids, buildIDs []string) ([]*Checkout, error) {
	upper, err := m.collect(ctx, db.QueryRequest{
		IDs:      map[string][]string{"checkouts": ids, "builds": buildIDs},
		Children: true,
	})
	if err != nil {
		return nil, err
	}

	checkouts := make(map[string]*Checkout, len(ids))
	for _, id := range ids {
		checkouts[id] = &Checkout{ID: id, Object: report.Object{"id": id}}
	}
	for _, obj := range upper.Objects("checkouts") {
		if c, ok := checkouts[report.ID(obj)]; ok {
			c.Object = obj
		}
	}

	builds := make(map[string]*Build)
	var stored []string
	for _, obj := range upper.Objects("builds") {
		c, ok := checkouts[field(obj, "checkout_id")]
		if !ok || builds[report.ID(obj)] != nil {
			continue
		}
		b := &Build{ID: report.ID(obj), Object: obj, Checkout: c}
		c.Builds = append(c.Builds, b)
		builds[b.ID] = b
		stored = append(stored, b.ID)
	}

	if len(stored) > 0 {
		lower, err := m.collect(ctx, db.QueryRequest{
			IDs:      map[string][]string{"builds": stored},
			Children: true,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range lower.Objects("tests") {
			b, ok := builds[field(obj, "build_id")]
			if !ok {
				continue
			}
			b.Tests = append(b.Tests, &Test{ID: report.ID(obj), Object: obj, Build: b})
		}
	}

	out := make([]*Checkout, len(ids))
	for i, id := range ids {
		out[i] = checkouts[id]
	}
	return out, nil
}

func (m *Monitor) collect(ctx context.Context, req db.QueryRequest) (report.Data, error) {
	all := report.New()
	for data, err := range m.source.Query(ctx, req, 0) {
		if err != nil {
			return nil, fmt.Errorf("failed to query objects: %w", err)
		}
		for _, name := range report.Collections {
			all.Add(name, data.Objects(name)...)
		}
	}
	return all, nil
}
