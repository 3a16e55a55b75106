package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"sanogenic/internal/credential"
	"sanogenic/internal/llm"
	"sanogenic/internal/prompt"
	"sanogenic/internal/task"
)

const validKey = "AIzaSyTest-abcdefghijklmnopqrstuvwx"

// countingClient records every Generate call and answers from fn.
type countingClient struct {
	calls atomic.Int32
	mu    sync.Mutex
	seen  []string
	fn    func(instruction string, schema prompt.Schema) (string, error)
}

func (c *countingClient) Name() string { return "counting" }
func (c *countingClient) Close() error { return nil }
func (c *countingClient) Generate(_ context.Context, _ credential.Credential, instruction string, schema prompt.Schema) (string, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.seen = append(c.seen, instruction)
	c.mu.Unlock()
	return c.fn(instruction, schema)
}

func answer(raw string) *countingClient {
	return &countingClient{fn: func(string, prompt.Schema) (string, error) { return raw, nil }}
}

func failing(err error) *countingClient {
	return &countingClient{fn: func(string, prompt.Schema) (string, error) { return "", err }}
}

func requests() []task.Request {
	return []task.Request{
		task.ThoughtAnalysisRequest{Thought: "x"},
		task.EmotionAdviceRequest{Emotion: "anger", Intensity: 7, Context: "deadline"},
		task.MetaphorRequest{Situation: "x"},
	}
}

func TestRun_EmptyInputMakesNoCall(t *testing.T) {
	cli := answer("{}")
	svc := New(credential.Static(validKey), cli)
	for _, req := range []task.Request{
		task.ThoughtAnalysisRequest{Thought: "   "},
		task.EmotionAdviceRequest{Emotion: "", Intensity: 5},
		task.MetaphorRequest{Situation: "\n\t"},
	} {
		res, err := svc.Run(context.Background(), req)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, task.ErrEmptyInput, "%T", req)
	}
	assert.Zero(t, cli.calls.Load())
}

func TestRun_InvalidIntensityMakesNoCall(t *testing.T) {
	cli := answer("{}")
	svc := New(credential.Static(validKey), cli)
	for _, n := range []int{0, 11} {
		_, err := svc.AdviseEmotion(context.Background(), "anger", n, "")
		assert.ErrorIs(t, err, task.ErrInvalidInput)
	}
	assert.Zero(t, cli.calls.Load())
}

func TestRun_MissingCredentialMakesNoCall(t *testing.T) {
	cli := answer("{}")
	lookup := func(string) (string, bool) { return "", false }
	svc := New(&credential.Resolver{Lookup: lookup}, cli)
	for _, req := range requests() {
		_, err := svc.Run(context.Background(), req)
		assert.ErrorIs(t, err, task.ErrNoCredential)
		assert.ErrorIs(t, err, credential.ErrMissing)
	}
	assert.Zero(t, cli.calls.Load())
}

func TestRun_MalformedCredentialDiagnosticIsMasked(t *testing.T) {
	const bad = "sk-0123456789abcdefghij"
	lookup := func(string) (string, bool) { return bad, true }
	svc := New(&credential.Resolver{Lookup: lookup}, answer("{}"))

	_, err := svc.AnalyzeThought(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, IsCredentialMalformed(err))
	var te *task.Error
	require.ErrorAs(t, err, &te)
	assert.NotContains(t, te.Diagnostic, bad)
	assert.Contains(t, te.Diagnostic, credential.Mask(bad))
}

func TestRun_TransportErrorsMapOneToOne(t *testing.T) {
	cases := []struct {
		kind llm.TransportKind
		want *task.Error
	}{
		{llm.TransportUnauthorized, task.ErrUnauthorized},
		{llm.TransportRateLimited, task.ErrRateLimited},
		{llm.TransportRegionBlocked, task.ErrRegionBlocked},
		{llm.TransportUnknown, task.ErrUnknown},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			cli := failing(&llm.TransportError{Kind: tc.kind, Message: "provider says " + string(tc.kind)})
			svc := New(credential.Static(validKey), cli)

			_, err := svc.GenerateMetaphor(context.Background(), "x")
			assert.ErrorIs(t, err, tc.want)
			var te *task.Error
			require.ErrorAs(t, err, &te)
			assert.Equal(t, "provider says "+string(tc.kind), te.Diagnostic)
			assert.Equal(t, tc.kind == llm.TransportRateLimited, te.Retryable())
			assert.EqualValues(t, 1, cli.calls.Load(), "no retry")
		})
	}
}

func TestRun_UnclassifiedErrorIsUnknown(t *testing.T) {
	svc := New(credential.Static(validKey), failing(errors.New("boom")))
	_, err := svc.AnalyzeThought(context.Background(), "x")
	assert.ErrorIs(t, err, task.ErrUnknown)
}

func TestRun_BadResponse(t *testing.T) {
	for _, raw := range []string{"", "not json", `{"analysis":"x"}`} {
		cli := answer(raw)
		svc := New(credential.Static(validKey), cli)
		res, err := svc.AnalyzeThought(context.Background(), "x")
		assert.ErrorIs(t, err, task.ErrBadResponse, "%q", raw)
		assert.Zero(t, res)
		assert.EqualValues(t, 1, cli.calls.Load())
	}
}

func TestRun_InsightScenario(t *testing.T) {
	const thought = "I resent my colleague for missing the deadline"
	raw := `{"originalThought":"I resent my colleague for missing the deadline",` +
		`"distortions":["should statements"],"analysis":"a","reframedThought":"r",` +
		`"suggestedAction":"s","shieldTechnique":"sh"}`
	cli := answer(raw)
	svc := New(credential.Static(validKey), cli)

	ins, err := svc.AnalyzeThought(context.Background(), thought)
	require.NoError(t, err)
	assert.Equal(t, thought, ins.OriginalThought)
	assert.NotNil(t, ins.Distortions)
	for _, s := range []string{ins.Analysis, ins.ReframedThought, ins.SuggestedAction, ins.ShieldTechnique} {
		assert.NotEmpty(t, s)
	}
	require.Len(t, cli.seen, 1)
	assert.Contains(t, cli.seen[0], thought)
}

func TestRun_ConcurrentCallsAreIndependent(t *testing.T) {
	svc := New(credential.Static(validKey), llm.NewFakeClient())

	const n = 16
	got := make([]string, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			ins, err := svc.AnalyzeThought(context.Background(), fmt.Sprintf("thought #%d", i))
			if err != nil {
				return err
			}
			got[i] = ins.OriginalThought
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("thought #%d", i), got[i])
	}
}

func TestRun_ConcurrentSuccessAndFailure(t *testing.T) {
	cli := &countingClient{fn: func(instruction string, _ prompt.Schema) (string, error) {
		if strings.Contains(instruction, "fail me") {
			return "", &llm.TransportError{Kind: llm.TransportRateLimited}
		}
		return `{"title":"T","story":"S","moral":"M"}`, nil
	}}
	svc := New(credential.Static(validKey), cli)

	var (
		g      errgroup.Group
		okRes  task.Metaphor
		errRes error
	)
	g.Go(func() error {
		var err error
		okRes, err = svc.GenerateMetaphor(context.Background(), "river")
		return err
	})
	g.Go(func() error {
		_, errRes = svc.GenerateMetaphor(context.Background(), "fail me")
		return nil
	})
	require.NoError(t, g.Wait())
	assert.Equal(t, "T", okRes.Title)
	assert.ErrorIs(t, errRes, task.ErrRateLimited)
}

func TestRun_RecorderSeesSuccessOnly(t *testing.T) {
	var recorded []task.Result
	rec := RecorderFunc(func(_ context.Context, _ task.Request, res task.Result) error {
		recorded = append(recorded, res)
		return errors.New("journal down")
	})
	svc := New(credential.Static(validKey), llm.NewFakeClient(), WithRecorder(rec))

	entry, err := svc.AdviseEmotion(context.Background(), "злость", 7, "дедлайн")
	require.NoError(t, err, "recorder errors must not fail the run")
	assert.Equal(t, 7, entry.Intensity)
	assert.Equal(t, "злость", entry.Emotion)

	_, err = svc.AdviseEmotion(context.Background(), " ", 7, "")
	require.Error(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, task.KindEmotionAdvice, recorded[0].Kind())
}

func TestRun_NilRequestAndClient(t *testing.T) {
	svc := New(credential.Static(validKey), nil)
	_, err := svc.Run(context.Background(), nil)
	assert.ErrorIs(t, err, task.ErrInvalidInput)

	_, err = svc.AnalyzeThought(context.Background(), "x")
	assert.ErrorIs(t, err, task.ErrUnknown)
}
