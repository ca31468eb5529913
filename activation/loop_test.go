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
	"testing"
	"time"

	"github.com/blinklabs-io/sidewatch/activation"
	"github.com/blinklabs-io/sidewatch/internal/test/fakesource"
	"github.com/blinklabs-io/sidewatch/internal/test/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartReconcilesImmediately(t *testing.T) {
	src := fakesource.New()
	src.SetStatuses(fakesource.Status(0xa1, 1, "A", 10, 0))
	m, err := activation.NewModel(activation.ModelConfig{
		Source:            src,
		ReconcileInterval: time.Hour,
	})
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()
	testutil.WaitForCondition(
		t,
		func() bool { return m.RowCount() == 1 },
		2*time.Second,
		"initial reconcile did not run",
	)
}

func TestStartStop(t *testing.T) {
	src := fakesource.New()
	src.SetStatuses(fakesource.Status(0xa1, 1, "A", 10, 0))
	m, _ := newTestModel(t, src, nil)

	require.NoError(t, m.Start(context.Background()))
	require.ErrorIs(
		t,
		m.Start(context.Background()),
		activation.ErrAlreadyStarted,
	)
	assert.True(t, m.Status().Running)
	testutil.WaitForCondition(
		t,
		func() bool { return m.RowCount() == 1 },
		2*time.Second,
		"first reconcile did not run",
	)

	src.SetStatuses(
		fakesource.Status(0xa1, 1, "A", 11, 0),
		fakesource.Status(0xb2, 2, "B", 0, 0),
	)
	testutil.WaitForCondition(
		t,
		func() bool { return m.RowCount() == 2 },
		2*time.Second,
		"periodic reconcile did not pick up new proposal",
	)

	m.Stop()
	m.Stop()
	assert.False(t, m.Status().Running)

	// Nothing changes once stopped
	src.SetStatuses()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 2, m.RowCount())

	// The loop can be started again after Stop
	require.NoError(t, m.Start(context.Background()))
	testutil.WaitForCondition(
		t,
		func() bool { return m.RowCount() == 0 },
		2*time.Second,
		"restarted loop did not reconcile",
	)
	m.Stop()
}

func TestLoopSurvivesFailures(t *testing.T) {
	src := fakesource.New()
	src.SetPanic("source exploded")
	m, _ := newTestModel(t, src, nil)
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	testutil.WaitForCondition(
		t,
		func() bool {
			statusCalls, _, _ := src.Calls()
			return statusCalls >= 2
		},
		2*time.Second,
		"loop stopped after panic",
	)

	src.SetPanic(nil)
	src.SetErrors(errors.New("node unavailable"), nil, nil)
	testutil.WaitForCondition(
		t,
		func() bool { return m.Status().LastError != "" },
		2*time.Second,
		"fetch error was not recorded",
	)

	src.SetErrors(nil, nil, nil)
	src.SetStatuses(fakesource.Status(0xa1, 1, "A", 10, 0))
	testutil.WaitForCondition(
		t,
		func() bool { return m.RowCount() == 1 },
		2*time.Second,
		"loop did not recover once the source did",
	)
}

func TestStopCancelsOutstandingFetch(t *testing.T) {
	src := fakesource.New()
	entered, release := src.Block()
	defer release()
	m, _ := newTestModel(t, src, nil)
	require.NoError(t, m.Start(context.Background()))
	testutil.RequireReceive(t, entered, 2*time.Second, "fetch did not start")

	stopped := make(chan struct{})
	go func() {
		m.Stop()
		close(stopped)
	}()
	testutil.RequireReceive(t, stopped, 2*time.Second, "Stop did not return")
	assert.Equal(t, 0, m.RowCount())
}

func TestStartContextCancel(t *testing.T) {
	src := fakesource.New()
	m, _ := newTestModel(t, src, nil)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, m.Start(ctx))
	cancel()
	// Stop still waits for the loop goroutine to exit
	m.Stop()
}
