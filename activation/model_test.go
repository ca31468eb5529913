// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package activation_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/sidewatch/activation"
	"github.com/blinklabs-io/sidewatch/event"
	"github.com/blinklabs-io/sidewatch/internal/test/fakesource"
	"github.com/blinklabs-io/sidewatch/internal/test/testutil"
	"github.com/blinklabs-io/sidewatch/sidechain"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder captures every published event in delivery order
type recorder struct {
	events []event.Event
	mu     sync.Mutex
}

func (r *recorder) Deliver(evt event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recorder) Close() {}

// take returns and clears the recorded events
func (r *recorder) take() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := r.events
	r.events = nil
	return ret
}

func newTestModel(
	t *testing.T,
	src sidechain.Source,
	reg prometheus.Registerer,
) (*activation.Model, *recorder) {
	t.Helper()
	return newTestModelWithConfig(t, activation.ModelConfig{
		Source:       src,
		PromRegistry: reg,
	})
}

// newTestModelWithConfig fills in the event bus and a short interval
func newTestModelWithConfig(
	t *testing.T,
	cfg activation.ModelConfig,
) (*activation.Model, *recorder) {
	t.Helper()
	eb := event.NewEventBus(nil, nil)
	rec := &recorder{}
	for _, evtType := range activation.EventTypes {
		eb.RegisterSubscriber(evtType, rec)
	}
	t.Cleanup(eb.Stop)
	cfg.EventBus = eb
	if cfg.ReconcileInterval == 0 {
		cfg.ReconcileInterval = 20 * time.Millisecond
	}
	m, err := activation.NewModel(cfg)
	require.NoError(t, err)
	return m, rec
}

func rowHashes(m *activation.Model) []sidechain.ProposalHash {
	var ret []sidechain.ProposalHash
	for _, rec := range m.Rows() {
		ret = append(ret, rec.Hash)
	}
	return ret
}

func TestNewModelRequiresSource(t *testing.T) {
	_, err := activation.NewModel(activation.ModelConfig{})
	require.ErrorIs(t, err, activation.ErrNoSource)
}

func TestNewModelDefaults(t *testing.T) {
	m, err := activation.NewModel(
		activation.ModelConfig{Source: fakesource.New()},
	)
	require.NoError(t, err)
	assert.Equal(t, activation.DefaultReconcileInterval, m.ReconcileInterval())
	assert.Equal(t, sidechain.DefaultThresholds(), m.Thresholds())
	assert.Equal(t, 0, m.RowCount())
	assert.Equal(t, 8, m.ColumnCount())
}

func TestReconcileInsertsInSnapshotOrder(t *testing.T) {
	src := fakesource.New()
	src.SetStatuses(
		fakesource.Status(0xa1, 1, "alpha", 1, 0),
		fakesource.Status(0xb2, 2, "beta", 2, 0),
		fakesource.Status(0xc3, 3, "gamma", 3, 0),
	)
	m, rec := newTestModel(t, src, nil)

	result := m.Reconcile(context.Background())
	require.NoError(t, result.Err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(
		t,
		[]sidechain.ProposalHash{
			fakesource.Hash(0xa1),
			fakesource.Hash(0xb2),
			fakesource.Hash(0xc3),
		},
		rowHashes(m),
	)

	events := rec.take()
	require.Len(t, events, 2)
	assert.Equal(t, activation.RowsInsertedEventType, events[0].Type)
	inserted, ok := events[0].Data.(activation.RowsInsertedEvent)
	require.True(t, ok)
	assert.Equal(t, 0, inserted.First)
	assert.Equal(t, 2, inserted.Last)
	require.Len(t, inserted.Records, 3)
	assert.Equal(t, "beta", inserted.Records[1].Title)
	assert.Equal(t, activation.ReconcileCompletedEventType, events[1].Type)
}

func TestReconcileUpdateRemoveInsert(t *testing.T) {
	src := fakesource.New()
	src.SetStatuses(
		fakesource.Status(0xa1, 1, "A", 10, 0),
		fakesource.Status(0xb2, 2, "B", 20, 0),
		fakesource.Status(0xc3, 3, "C", 30, 0),
	)
	m, rec := newTestModel(t, src, nil)
	require.NoError(t, m.Reconcile(context.Background()).Err)
	rec.take()

	// C and A leave, B ages, D arrives
	src.SetStatuses(
		fakesource.Status(0xb2, 2, "B", 21, 1),
		fakesource.Status(0xd4, 4, "D", 0, 0),
	)
	result := m.Reconcile(context.Background())
	require.NoError(t, result.Err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 2, result.Removed)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(
		t,
		[]sidechain.ProposalHash{fakesource.Hash(0xb2), fakesource.Hash(0xd4)},
		rowHashes(m),
	)
	row, ok := m.Row(0)
	require.True(t, ok)
	assert.Equal(t, uint32(21), row.Age)
	assert.Equal(t, uint32(1), row.Fail)

	events := rec.take()
	types := make([]event.EventType, 0, len(events))
	for _, evt := range events {
		types = append(types, evt.Type)
	}
	require.Equal(
		t,
		[]event.EventType{
			activation.RowChangedEventType,
			activation.RowsRemovedEventType,
			activation.RowsRemovedEventType,
			activation.RowsInsertedEventType,
			activation.ReconcileCompletedEventType,
		},
		types,
	)
	changed := events[0].Data.(activation.RowChangedEvent)
	assert.Equal(t, 1, changed.Row)
	assert.Equal(t, fakesource.Hash(0xb2), changed.Record.Hash)
	assert.True(t, changed.Modified)
	// Removals run from the highest row down
	first := events[1].Data.(activation.RowsRemovedEvent)
	assert.Equal(t, 2, first.First)
	assert.Equal(t, []sidechain.ProposalHash{fakesource.Hash(0xc3)}, first.Hashes)
	second := events[2].Data.(activation.RowsRemovedEvent)
	assert.Equal(t, 0, second.First)
	assert.Equal(t, []sidechain.ProposalHash{fakesource.Hash(0xa1)}, second.Hashes)
	inserted := events[3].Data.(activation.RowsInsertedEvent)
	assert.Equal(t, 1, inserted.First)
	assert.Equal(t, 1, inserted.Last)
	completed := events[4].Data.(activation.ReconcileCompletedEvent)
	assert.Equal(t, 2, completed.Rows)
}

func TestReconcileUnchangedSnapshot(t *testing.T) {
	src := fakesource.New()
	src.SetStatuses(
		fakesource.Status(0xa1, 1, "A", 10, 0),
		fakesource.Status(0xb2, 2, "B", 20, 0),
	)
	m, rec := newTestModel(t, src, nil)
	require.NoError(t, m.Reconcile(context.Background()).Err)
	rec.take()

	result := m.Reconcile(context.Background())
	require.NoError(t, result.Err)
	assert.Zero(t, result.Updated)
	assert.Zero(t, result.Removed)
	assert.Zero(t, result.Inserted)
	// Every matched row is still signalled, with no structural change
	events := rec.take()
	require.Len(t, events, 3)
	for i, evt := range events[:2] {
		require.Equal(t, activation.RowChangedEventType, evt.Type)
		changed := evt.Data.(activation.RowChangedEvent)
		assert.Equal(t, i, changed.Row)
		assert.False(t, changed.Modified)
	}
	assert.Equal(t, activation.ReconcileCompletedEventType, events[2].Type)
}

func TestReconcileImmutableFieldsKept(t *testing.T) {
	src := fakesource.New()
	src.SetStatuses(fakesource.Status(0xa1, 1, "original", 1, 0))
	m, _ := newTestModel(t, src, nil)
	require.NoError(t, m.Reconcile(context.Background()).Err)

	renamed := fakesource.Status(0xa1, 1, "renamed", 2, 0)
	src.SetStatuses(renamed)
	require.NoError(t, m.Reconcile(context.Background()).Err)
	row, ok := m.Row(0)
	require.True(t, ok)
	assert.Equal(t, "original", row.Title)
	assert.Equal(t, uint32(2), row.Age)
}

func TestReconcileEmptySnapshotClearsTable(t *testing.T) {
	src := fakesource.New()
	src.SetStatuses(
		fakesource.Status(0xa1, 1, "A", 10, 0),
		fakesource.Status(0xb2, 2, "B", 20, 0),
	)
	m, rec := newTestModel(t, src, nil)
	require.NoError(t, m.Reconcile(context.Background()).Err)
	rec.take()

	src.SetStatuses()
	result := m.Reconcile(context.Background())
	require.NoError(t, result.Err)
	assert.Equal(t, 2, result.Removed)
	assert.Equal(t, 0, m.RowCount())
	events := rec.take()
	require.Len(t, events, 3)
	assert.Equal(t, 1, events[0].Data.(activation.RowsRemovedEvent).First)
	assert.Equal(t, 0, events[1].Data.(activation.RowsRemovedEvent).First)
}

func TestReconcileFetchErrorLeavesTable(t *testing.T) {
	reg := prometheus.NewRegistry()
	src := fakesource.New()
	src.SetStatuses(fakesource.Status(0xa1, 1, "A", 10, 0))
	m, rec := newTestModel(t, src, reg)
	require.NoError(t, m.Reconcile(context.Background()).Err)
	rec.take()

	fetchErr := errors.New("connection refused")
	src.SetErrors(fetchErr, nil, nil)
	src.SetStatuses()
	result := m.Reconcile(context.Background())
	require.ErrorIs(t, result.Err, fetchErr)
	assert.True(t, result.Skipped)
	assert.Equal(t, activation.SkipReasonFetchError, result.SkipReason)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, 1, m.RowCount())
	assert.Empty(t, rec.take())
	status := m.Status()
	assert.Contains(t, status.LastError, "connection refused")
	assert.False(t, status.LastSuccess.IsZero())

	expected := `
# HELP sidewatch_activation_reconcile_total reconcile passes, by result
# TYPE sidewatch_activation_reconcile_total counter
sidewatch_activation_reconcile_total{result="fetch_error"} 1
sidewatch_activation_reconcile_total{result="ok"} 1
`
	require.NoError(
		t,
		promtestutil.GatherAndCompare(
			reg,
			strings.NewReader(expected),
			"sidewatch_activation_reconcile_total",
		),
	)

	// The next good pass clears the error
	src.SetErrors(nil, nil, nil)
	require.NoError(t, m.Reconcile(context.Background()).Err)
	assert.Empty(t, m.Status().LastError)
	assert.Equal(t, 0, m.RowCount())
}

func TestReconcileFetchTimeout(t *testing.T) {
	src := fakesource.New()
	src.SetStatuses(fakesource.Status(0xa1, 1, "A", 10, 0))
	m, rec := newTestModelWithConfig(t, activation.ModelConfig{
		Source:       src,
		FetchTimeout: 20 * time.Millisecond,
	})
	require.NoError(t, m.Reconcile(context.Background()).Err)
	before := m.Rows()
	rec.take()

	src.SetStatuses(fakesource.Status(0xb2, 2, "B", 20, 0))
	_, release := src.Block()
	defer release()
	result := m.Reconcile(context.Background())
	require.ErrorIs(t, result.Err, context.DeadlineExceeded)
	assert.True(t, result.Skipped)
	assert.Equal(t, activation.SkipReasonFetchError, result.SkipReason)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, before, m.Rows())
	assert.Empty(t, rec.take())
	assert.NotEmpty(t, m.Status().LastError)
}

func TestReconcileDerivedQueryErrorSkipsPass(t *testing.T) {
	testDefs := []struct {
		name      string
		ackErr    error
		activeErr error
	}{
		{name: "ack", ackErr: errors.New("ack failed")},
		{name: "active", activeErr: errors.New("active failed")},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			src := fakesource.New()
			src.SetStatuses(fakesource.Status(0xa1, 1, "A", 10, 0))
			src.SetErrors(nil, testDef.ackErr, testDef.activeErr)
			m, rec := newTestModel(t, src, nil)
			result := m.Reconcile(context.Background())
			require.Error(t, result.Err)
			assert.Equal(t, 0, m.RowCount())
			assert.Empty(t, rec.take())
		})
	}
}

func TestReconcileDropsMalformedRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	src := fakesource.New()
	src.SetStatuses(
		fakesource.Status(0xa1, 1, "A", 10, 0),
		fakesource.Status(0x00, 2, "zero", 20, 0),
		fakesource.Status(0xa1, 3, "dup", 30, 0),
		fakesource.Status(0xb2, 4, "B", 40, 0),
	)
	m, _ := newTestModel(t, src, reg)
	result := m.Reconcile(context.Background())
	require.NoError(t, result.Err)
	assert.Equal(t, 2, result.Rows)
	row, ok := m.Row(0)
	require.True(t, ok)
	assert.Equal(t, "A", row.Title)
	assert.Equal(t, uint8(1), row.Slot)

	expected := `
# HELP sidewatch_activation_malformed_records_total snapshot records dropped by validation
# TYPE sidewatch_activation_malformed_records_total counter
sidewatch_activation_malformed_records_total 2
# HELP sidewatch_activation_rows current count of pending sidechain proposals displayed
# TYPE sidewatch_activation_rows gauge
sidewatch_activation_rows 2
`
	require.NoError(
		t,
		promtestutil.GatherAndCompare(
			reg,
			strings.NewReader(expected),
			"sidewatch_activation_malformed_records_total",
			"sidewatch_activation_rows",
		),
	)
}

func TestReconcileDerivesAckAndReplacement(t *testing.T) {
	src := fakesource.New()
	src.SetStatuses(
		fakesource.Status(0xa1, 1, "A", 10, 0),
		fakesource.Status(0xb2, 1, "B", 20, 0),
		fakesource.Status(0xc3, 2, "C", 30, 0),
	)
	src.SetAck(fakesource.Hash(0xb2), true)
	src.SetActive(1, true)
	m, _ := newTestModel(t, src, nil)
	require.NoError(t, m.Reconcile(context.Background()).Err)

	rows := m.Rows()
	require.Len(t, rows, 3)
	assert.False(t, rows[0].Ack)
	assert.True(t, rows[1].Ack)
	assert.True(t, rows[0].Replacement)
	assert.True(t, rows[1].Replacement)
	assert.False(t, rows[2].Replacement)
	_, ackCalls, activeCalls := src.Calls()
	assert.Equal(t, 3, ackCalls)
	// Slot status is looked up once per slot per pass
	assert.Equal(t, 2, activeCalls)

	// A vote change alone is reported as a row change
	src.SetAck(fakesource.Hash(0xa1), true)
	result := m.Reconcile(context.Background())
	assert.Equal(t, 1, result.Updated)
	vote, ok := m.Data(0, activation.ColumnVote)
	require.True(t, ok)
	assert.Equal(t, "ACK", vote)
}

func TestReconcileListsActiveSlotsOncePerPass(t *testing.T) {
	src := fakesource.NewListing()
	src.SetStatuses(
		fakesource.Status(0xa1, 1, "A", 10, 0),
		fakesource.Status(0xb2, 2, "B", 20, 0),
		fakesource.Status(0xc3, 3, "C", 30, 0),
	)
	src.SetActive(2, true)
	m, _ := newTestModel(t, src, nil)
	require.NoError(t, m.Reconcile(context.Background()).Err)

	rows := m.Rows()
	require.Len(t, rows, 3)
	assert.False(t, rows[0].Replacement)
	assert.True(t, rows[1].Replacement)
	assert.False(t, rows[2].Replacement)
	assert.Equal(t, 1, src.ListCalls())
	_, _, activeCalls := src.Calls()
	assert.Zero(t, activeCalls)

	require.NoError(t, m.Reconcile(context.Background()).Err)
	assert.Equal(t, 2, src.ListCalls())

	// An empty pending list needs no slot lookup
	src.SetStatuses()
	require.NoError(t, m.Reconcile(context.Background()).Err)
	assert.Equal(t, 2, src.ListCalls())

	src.SetStatuses(fakesource.Status(0xa1, 1, "A", 11, 0))
	src.SetErrors(nil, nil, errors.New("list failed"))
	result := m.Reconcile(context.Background())
	require.Error(t, result.Err)
	assert.True(t, result.Skipped)
	assert.Equal(t, 0, m.RowCount())
}

func TestReconcileWithUndrainedSubscriber(t *testing.T) {
	src := fakesource.New()
	src.SetStatuses(fakesource.Status(0xa1, 1, "A", 10, 0))
	eb := event.NewEventBus(nil, nil)
	_, stuckCh := eb.Subscribe(activation.ReconcileCompletedEventType)
	m, err := activation.NewModel(activation.ModelConfig{
		Source:   src,
		EventBus: eb,
	})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range event.EventQueueSize + 5 {
			m.Reconcile(context.Background())
		}
	}()
	testutil.RequireReceive(t, done, 5*time.Second, "reconcile blocked on subscriber")

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		eb.Stop()
	}()
	testutil.RequireReceive(t, stopped, 5*time.Second, "event bus stop blocked")

	// The subscriber was dropped once its queue filled
	count := 0
	for range stuckCh {
		count++
	}
	assert.Equal(t, event.EventQueueSize, count)
}

func TestReconcileSkipsWhenInFlight(t *testing.T) {
	reg := prometheus.NewRegistry()
	src := fakesource.New()
	src.SetStatuses(fakesource.Status(0xa1, 1, "A", 10, 0))
	m, _ := newTestModel(t, src, reg)

	entered, release := src.Block()
	done := make(chan activation.ReconcileResult, 1)
	go func() {
		done <- m.Reconcile(context.Background())
	}()
	testutil.RequireReceive(t, entered, 2*time.Second, "fetch did not start")

	skipped := m.Reconcile(context.Background())
	assert.True(t, skipped.Skipped)
	assert.Equal(t, activation.SkipReasonInFlight, skipped.SkipReason)

	release()
	result := testutil.RequireReceive(t, done, 2*time.Second, "reconcile did not finish")
	require.NoError(t, result.Err)
	assert.Equal(t, 1, result.Rows)
	statusCalls, _, _ := src.Calls()
	assert.Equal(t, 1, statusCalls)

	expected := `
# HELP sidewatch_activation_reconcile_total reconcile passes, by result
# TYPE sidewatch_activation_reconcile_total counter
sidewatch_activation_reconcile_total{result="in_flight"} 1
sidewatch_activation_reconcile_total{result="ok"} 1
`
	require.NoError(
		t,
		promtestutil.GatherAndCompare(
			reg,
			strings.NewReader(expected),
			"sidewatch_activation_reconcile_total",
		),
	)
}

func TestReadersDuringReconcile(t *testing.T) {
	src := fakesource.New()
	src.SetStatuses(
		fakesource.Status(0xa1, 1, "A", 10, 0),
		fakesource.Status(0xb2, 2, "B", 20, 0),
	)
	m, _ := newTestModel(t, src, nil)
	require.NoError(t, m.Reconcile(context.Background()).Err)

	// Readers are not blocked by an outstanding fetch
	entered, release := src.Block()
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Reconcile(context.Background())
	}()
	testutil.RequireReceive(t, entered, 2*time.Second, "fetch did not start")
	assert.Equal(t, 2, m.RowCount())
	hash, ok := m.HashAtRow(1)
	require.True(t, ok)
	assert.Equal(t, fakesource.Hash(0xb2), hash)
	release()
	testutil.RequireReceive(t, done, 2*time.Second, "reconcile did not finish")

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				for row := range m.RowCount() {
					m.Data(row, activation.ColumnHash)
				}
				m.Rows()
			}
		}()
	}
	for i := range 20 {
		src.SetStatuses(
			fakesource.Status(0xa1, 1, "A", uint32(i), 0),
			fakesource.Status(byte(0xc0+i%3), 3, "C", 0, 0),
		)
		m.Reconcile(context.Background())
	}
	wg.Wait()
}

func TestHashAtRowOutOfRange(t *testing.T) {
	src := fakesource.New()
	src.SetStatuses(fakesource.Status(0xa1, 1, "A", 10, 0))
	m, _ := newTestModel(t, src, nil)
	require.NoError(t, m.Reconcile(context.Background()).Err)

	hash, ok := m.HashAtRow(0)
	assert.True(t, ok)
	assert.Equal(t, fakesource.Hash(0xa1), hash)
	for _, row := range []int{-1, 1, 100} {
		hash, ok := m.HashAtRow(row)
		assert.False(t, ok)
		assert.True(t, hash.IsZero())
	}
}

func TestDataRendering(t *testing.T) {
	src := fakesource.New()
	src.SetStatuses(
		fakesource.Status(0xa1, 7, "A", 5, 3),
		fakesource.Status(0xb2, 8, "B", 9, 0),
	)
	src.SetActive(8, true)
	src.SetAck(fakesource.Hash(0xb2), true)
	m, _ := newTestModel(t, src, nil)
	require.NoError(t, m.Reconcile(context.Background()).Err)

	testDefs := []struct {
		row      int
		col      activation.Column
		expected string
	}{
		{0, activation.ColumnVote, "NACK"},
		{0, activation.ColumnSlot, "7"},
		{0, activation.ColumnReplacement, "false"},
		{0, activation.ColumnTitle, "A"},
		{0, activation.ColumnDescription, "A description"},
		{0, activation.ColumnAge, "5 / 2016"},
		{0, activation.ColumnFails, "3 / 200"},
		{0, activation.ColumnHash, fakesource.Hash(0xa1).String()},
		{1, activation.ColumnVote, "ACK"},
		{1, activation.ColumnReplacement, "true"},
		{1, activation.ColumnAge, "9 / 26298"},
	}
	for _, testDef := range testDefs {
		val, ok := m.Data(testDef.row, testDef.col)
		assert.True(t, ok)
		assert.Equal(t, testDef.expected, val)
	}

	_, ok := m.Data(2, activation.ColumnTitle)
	assert.False(t, ok)
	_, ok = m.Data(0, activation.Column(activation.ColumnCount))
	assert.False(t, ok)
}

func TestHeaderData(t *testing.T) {
	m, err := activation.NewModel(
		activation.ModelConfig{Source: fakesource.New()},
	)
	require.NoError(t, err)
	expected := []string{
		"Vote",
		"SC #",
		"Replacement",
		"Title",
		"Description",
		"Age",
		"Fails",
		"Hash",
	}
	assert.Equal(t, expected, activation.Headers())
	for col := range m.ColumnCount() {
		header, ok := m.HeaderData(activation.Column(col))
		assert.True(t, ok)
		assert.Equal(t, expected[col], header)
	}
	_, ok := m.HeaderData(activation.Column(-1))
	assert.False(t, ok)
	_, ok = m.HeaderData(activation.Column(8))
	assert.False(t, ok)
}

func TestRecordThresholds(t *testing.T) {
	th := sidechain.Thresholds{
		ActivationPeriod:      10,
		ReplacementPeriod:     20,
		ActivationMaxFailures: 3,
	}
	rec := activation.Record{Fail: 2}
	assert.Equal(t, uint32(10), rec.Period(th))
	assert.False(t, rec.Expired(th))
	rec.Fail = 3
	rec.Replacement = true
	assert.Equal(t, uint32(20), rec.Period(th))
	assert.True(t, rec.Expired(th))
	cells := rec.Cells(th)
	require.Len(t, cells, activation.ColumnCount)
	assert.Equal(t, "0 / 20", cells[activation.ColumnAge])
	assert.Equal(t, "3 / 3", cells[activation.ColumnFails])
}
