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

package activation

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/blinklabs-io/sidewatch/event"
	"github.com/blinklabs-io/sidewatch/sidechain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	SkipReasonInFlight   = "in_flight"
	SkipReasonFetchError = "fetch_error"
)

// ReconcileResult summarizes one pass. A skipped pass leaves the table
// untouched; Err carries the fetch failure when there was one.
type ReconcileResult struct {
	Err        error
	SkipReason string
	Updated    int
	Removed    int
	Inserted   int
	Rows       int
	Skipped    bool
}

// Reconcile fetches the node's pending proposals and brings the table in
// line with them. It never panics or returns an error to the caller; a
// failed fetch is reported in the result and the table is left as it was.
func (m *Model) Reconcile(ctx context.Context) ReconcileResult {
	if !m.inFlight.CompareAndSwap(false, true) {
		m.metrics.reconciles.WithLabelValues(resultInFlight).Inc()
		m.logger.Debug("reconcile already in flight, skipping")
		return ReconcileResult{
			Skipped:    true,
			SkipReason: SkipReasonInFlight,
			Rows:       m.RowCount(),
		}
	}
	defer m.inFlight.Store(false)

	ctx, span := m.tracer.Start(ctx, "activation.reconcile")
	defer span.End()
	start := time.Now()

	// Fetch runs without holding the table lock so readers are never
	// blocked behind the node
	snapshot, err := m.fetch(ctx)
	if err != nil {
		m.metrics.reconciles.WithLabelValues(resultFetchError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		m.logger.Warn(
			"failed to fetch sidechain activation status",
			"error", err,
		)
		m.mu.Lock()
		m.status.LastAttempt = start
		m.status.LastError = err.Error()
		rows := len(m.records)
		m.mu.Unlock()
		return ReconcileResult{
			Err:        err,
			Skipped:    true,
			SkipReason: SkipReasonFetchError,
			Rows:       rows,
		}
	}

	result, events := m.apply(snapshot, start)
	// Publish outside the lock so subscribers may call back into the model
	if m.config.EventBus != nil {
		for _, evt := range events {
			m.config.EventBus.Publish(evt.Type, evt)
		}
	}

	m.metrics.reconciles.WithLabelValues(resultOk).Inc()
	m.metrics.reconcileDuration.Observe(time.Since(start).Seconds())
	m.metrics.lastSuccess.Set(float64(start.Unix()))
	span.SetAttributes(
		attribute.Int("rows", result.Rows),
		attribute.Int("updated", result.Updated),
		attribute.Int("removed", result.Removed),
		attribute.Int("inserted", result.Inserted),
	)
	if result.Removed > 0 || result.Inserted > 0 {
		m.logger.Info(
			"activation table changed",
			"rows", result.Rows,
			"removed", result.Removed,
			"inserted", result.Inserted,
		)
	}
	return result
}

// fetch reads the pending list and derives the local vote and replacement
// flags for each proposal. Any source error aborts the whole pass.
func (m *Model) fetch(
	ctx context.Context,
) ([]sidechain.ActivationStatus, error) {
	if m.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.FetchTimeout)
		defer cancel()
	}
	source := m.config.Source
	statuses, err := source.ActivationStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("activation status: %w", err)
	}
	trace.SpanFromContext(ctx).AddEvent(
		"snapshot",
		trace.WithAttributes(attribute.Int("records", len(statuses))),
	)
	ret := make([]sidechain.ActivationStatus, 0, len(statuses))
	seen := make(map[sidechain.ProposalHash]struct{}, len(statuses))
	slots := newSlotResolver(source)
	for _, status := range statuses {
		if err := status.Validate(); err != nil {
			m.metrics.malformedRecords.Inc()
			m.logger.Debug(
				"dropping malformed activation record",
				"slot", status.Slot,
				"error", err,
			)
			continue
		}
		if _, ok := seen[status.Hash]; ok {
			m.metrics.malformedRecords.Inc()
			m.logger.Debug(
				"dropping duplicate activation record",
				"hash", status.Hash.String(),
			)
			continue
		}
		seen[status.Hash] = struct{}{}
		ack, err := source.AckSidechain(ctx, status.Hash)
		if err != nil {
			return nil, fmt.Errorf(
				"ack status for %s: %w",
				status.Hash.String(),
				err,
			)
		}
		active, err := slots.active(ctx, status.Slot)
		if err != nil {
			return nil, fmt.Errorf(
				"active status for slot %d: %w",
				status.Slot,
				err,
			)
		}
		status.Ack = ack
		status.Replacement = active
		ret = append(ret, status)
	}
	return ret, nil
}

// apply runs the update, remove and insert phases under the write lock and
// returns the events to publish in the order they happened
func (m *Model) apply(
	snapshot []sidechain.ActivationStatus,
	start time.Time,
) (ReconcileResult, []event.Event) {
	var result ReconcileResult
	var events []event.Event
	byHash := make(map[sidechain.ProposalHash]int, len(snapshot))
	for i, status := range snapshot {
		byHash[status.Hash] = i
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Update rows still pending and note the stale ones
	var stale []int
	for row := range m.records {
		idx, ok := byHash[m.records[row].Hash]
		if !ok {
			stale = append(stale, row)
			continue
		}
		modified := m.records[row].refresh(snapshot[idx])
		if modified {
			result.Updated++
		}
		events = append(
			events,
			event.NewEvent(
				RowChangedEventType,
				RowChangedEvent{
					Row:      row,
					Record:   m.records[row],
					Modified: modified,
				},
			),
		)
	}

	// Remove from the highest row down so lower indexes stay valid
	for _, row := range slices.Backward(stale) {
		hash := m.records[row].Hash
		m.records = slices.Delete(m.records, row, row+1)
		result.Removed++
		events = append(
			events,
			event.NewEvent(
				RowsRemovedEventType,
				RowsRemovedEvent{
					First:  row,
					Last:   row,
					Hashes: []sidechain.ProposalHash{hash},
				},
			),
		)
	}

	// Append new proposals in snapshot order as one contiguous block
	present := make(map[sidechain.ProposalHash]struct{}, len(m.records))
	for _, rec := range m.records {
		present[rec.Hash] = struct{}{}
	}
	first := len(m.records)
	for _, status := range snapshot {
		if _, ok := present[status.Hash]; ok {
			continue
		}
		m.records = append(m.records, newRecord(status))
	}
	if len(m.records) > first {
		inserted := make([]Record, len(m.records)-first)
		copy(inserted, m.records[first:])
		result.Inserted = len(inserted)
		events = append(
			events,
			event.NewEvent(
				RowsInsertedEventType,
				RowsInsertedEvent{
					First:   first,
					Last:    len(m.records) - 1,
					Records: inserted,
				},
			),
		)
	}

	result.Rows = len(m.records)
	events = append(
		events,
		event.NewEvent(
			ReconcileCompletedEventType,
			ReconcileCompletedEvent{
				Updated:  result.Updated,
				Removed:  result.Removed,
				Inserted: result.Inserted,
				Rows:     result.Rows,
			},
		),
	)

	m.status.LastAttempt = start
	m.status.LastSuccess = start
	m.status.LastError = ""
	m.metrics.rows.Set(float64(result.Rows))
	m.metrics.rowsUpdated.Add(float64(result.Updated))
	m.metrics.rowsRemoved.Add(float64(result.Removed))
	m.metrics.rowsInserted.Add(float64(result.Inserted))
	return result, events
}

// slotResolver answers slot occupancy for one pass. A source that can list
// every active slot is queried once; any other source once per slot.
type slotResolver struct {
	source sidechain.Source
	lister sidechain.ActiveSlotLister
	listed map[uint8]struct{}
	cache  map[uint8]bool
}

func newSlotResolver(source sidechain.Source) *slotResolver {
	lister, _ := source.(sidechain.ActiveSlotLister)
	return &slotResolver{
		source: source,
		lister: lister,
		cache:  make(map[uint8]bool),
	}
}

func (r *slotResolver) active(ctx context.Context, slot uint8) (bool, error) {
	if r.lister != nil {
		if r.listed == nil {
			listed, err := r.lister.ActiveSlots(ctx)
			if err != nil {
				return false, err
			}
			if listed == nil {
				listed = make(map[uint8]struct{})
			}
			r.listed = listed
		}
		_, ok := r.listed[slot]
		return ok, nil
	}
	if active, ok := r.cache[slot]; ok {
		return active, nil
	}
	active, err := r.source.IsSidechainActive(ctx, slot)
	if err != nil {
		return false, err
	}
	r.cache[slot] = active
	return active, nil
}
