package roster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleSnapshot() *Snapshot {
	return NewSnapshot(
		[]model.Stage{{ID: 2, Name: "Cafe 61"}, {ID: 1, Name: "Hoofdpodium"}},
		[]model.Band{{ID: 3, Name: "C"}, {ID: 1, Name: "A"}},
		[]model.JuryMember{
			{ID: "j2", Name: "Show judge", Discipline: model.Show, StageID: 1},
			{ID: "j1", Name: "Music judge", Discipline: model.Musicality, StageID: 1},
		},
		[]model.Category{
			{ID: 7, Name: "Interactie", Discipline: model.Show},
			{ID: 1, Name: "Zuiverheid", Discipline: model.Musicality},
			{ID: 2, Name: "Balans", Discipline: model.Musicality},
		},
	)
}

func TestSnapshot_LookupsAndOrdering(t *testing.T) {
	snap := sampleSnapshot()

	assert.Equal(t, []int{1, 2}, []int{snap.Stages[0].ID, snap.Stages[1].ID})
	assert.Equal(t, 1, snap.Bands[0].ID)
	assert.Equal(t, model.JuryMemberID("j1"), snap.JuryMembers[0].ID)

	b, ok := snap.Band(3)
	require.True(t, ok)
	assert.Equal(t, "C", b.Name)
	_, ok = snap.Band(99)
	assert.False(t, ok)

	d, ok := snap.DisciplineOf("j2")
	require.True(t, ok)
	assert.Equal(t, model.Show, d)
	_, ok = snap.DisciplineOf("2")
	assert.False(t, ok, "discipline must never be derived from the id shape")

	cats := snap.CategoriesFor(model.Musicality)
	require.Len(t, cats, 2)
	assert.Equal(t, 1, cats[0].ID)
	assert.Equal(t, 2, cats[1].ID)
}

func TestSnapshot_IsolatedFromInput(t *testing.T) {
	bands := []model.Band{{ID: 1, Name: "A"}}
	snap := NewSnapshot(nil, bands, nil, nil)
	bands[0].Name = "changed"
	b, _ := snap.Band(1)
	assert.Equal(t, "A", b.Name)
}

func TestStore_NotReadyUntilApplied(t *testing.T) {
	s := NewStore(6, nil)
	_, ok := s.Current()
	assert.False(t, ok)

	s.Apply(nil)
	_, ok = s.Current()
	assert.False(t, ok)

	s.Apply(sampleSnapshot())
	snap, ok := s.Current()
	require.True(t, ok)
	assert.Len(t, snap.Bands, 2)
}

func TestStore_FollowAppliesUntilClosed(t *testing.T) {
	s := NewStore(0, nil)
	ch := make(chan *Snapshot, 2)
	ch <- NewSnapshot(nil, []model.Band{{ID: 1, Name: "A"}}, nil, nil)
	ch <- NewSnapshot(nil, []model.Band{{ID: 1, Name: "A renamed"}}, nil, nil)
	close(ch)

	require.NoError(t, s.Follow(context.Background(), ch))
	snap, ok := s.Current()
	require.True(t, ok)
	b, _ := snap.Band(1)
	assert.Equal(t, "A renamed", b.Name)
}

func TestStore_FollowStopsOnCancel(t *testing.T) {
	s := NewStore(0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Follow(ctx, make(chan *Snapshot))
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeSource struct {
	mu    sync.Mutex
	calls int
	fail  int
	bands []model.Band
}

func (f *fakeSource) LoadRoster(context.Context) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.fail {
		return nil, errors.New("store unavailable")
	}
	return NewSnapshot(nil, f.bands, nil, nil), nil
}

func (f *fakeSource) setBands(b []model.Band) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bands = b
}

func receive(t *testing.T, ch <-chan *Snapshot) *Snapshot {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for roster snapshot")
		return nil
	}
}

func TestFeed_InitialLoadAndNotify(t *testing.T) {
	src := &fakeSource{bands: []model.Band{{ID: 1, Name: "A"}}}
	feed := NewFeed(src, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx) }()

	first := receive(t, feed.Updates())
	assert.Len(t, first.Bands, 1)

	src.setBands([]model.Band{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}})
	feed.Notify()
	second := receive(t, feed.Updates())
	assert.Len(t, second.Bands, 2)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	_, open := <-feed.Updates()
	assert.False(t, open)
}

func TestFeed_RetriesFailedLoad(t *testing.T) {
	src := &fakeSource{fail: 2, bands: []model.Band{{ID: 1, Name: "A"}}}
	feed := NewFeed(src, nil)
	feed.retryDelay = 5 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx) }()

	snap := receive(t, feed.Updates())
	assert.Len(t, snap.Bands, 1)

	cancel()
	<-done
	src.mu.Lock()
	defer src.mu.Unlock()
	assert.Equal(t, 3, src.calls)
}

func TestFeed_NotifyNeverBlocks(t *testing.T) {
	feed := NewFeed(&fakeSource{}, nil)
	for i := 0; i < 10; i++ {
		feed.Notify()
	}
	assert.Len(t, feed.trigger, 1)
}

type fakeWriter struct {
	bands     map[int]model.Band
	jury      map[model.JuryMemberID]model.JuryMember
	stages    map[int]model.Stage
	failWrite error
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{
		bands:  map[int]model.Band{},
		jury:   map[model.JuryMemberID]model.JuryMember{},
		stages: map[int]model.Stage{1: {ID: 1, Name: "Hoofdpodium"}},
	}
}

func (w *fakeWriter) CreateBand(_ context.Context, b model.Band) error {
	if w.failWrite != nil {
		return w.failWrite
	}
	if _, ok := w.bands[b.ID]; ok {
		return ErrDuplicate
	}
	w.bands[b.ID] = b
	return nil
}

func (w *fakeWriter) UpdateBandName(_ context.Context, id int, name string) error {
	b, ok := w.bands[id]
	if !ok {
		return ErrNotFound
	}
	b.Name = name
	w.bands[id] = b
	return nil
}

func (w *fakeWriter) CreateJuryMember(_ context.Context, j model.JuryMember) error {
	w.jury[j.ID] = j
	return nil
}

func (w *fakeWriter) UpdateJuryMember(_ context.Context, id model.JuryMemberID, upd JuryMemberUpdate) error {
	j, ok := w.jury[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Name != nil {
		j.Name = *upd.Name
	}
	if upd.Discipline != nil {
		j.Discipline = *upd.Discipline
	}
	if upd.StageID != nil {
		j.StageID = *upd.StageID
	}
	w.jury[id] = j
	return nil
}

func (w *fakeWriter) UpdateStageName(_ context.Context, id int, name string) error {
	st, ok := w.stages[id]
	if !ok {
		return ErrNotFound
	}
	st.Name = name
	w.stages[id] = st
	return nil
}

type countingReloader struct{ n int }

func (r *countingReloader) Notify() { r.n++ }

type fakePublisher struct {
	collections []string
	err         error
}

func (p *fakePublisher) PublishRosterChanged(_ context.Context, collection string) error {
	p.collections = append(p.collections, collection)
	return p.err
}

func newTestService(t *testing.T) (*Service, *fakeWriter, *countingReloader, *fakePublisher) {
	t.Helper()
	w := newFakeWriter()
	store := NewStore(0, nil)
	store.Apply(NewSnapshot([]model.Stage{{ID: 1, Name: "Hoofdpodium"}}, nil, nil, nil))
	rl := &countingReloader{}
	pub := &fakePublisher{}
	svc := NewService(w, store, rl, pub, nil)
	svc.newID = func() string { return "jury-1" }
	return svc, w, rl, pub
}

func TestService_AddAndRenameBand(t *testing.T) {
	svc, w, rl, pub := newTestService(t)
	ctx := context.Background()

	b, err := svc.AddBand(ctx, 4, "  The Marching Four ")
	require.NoError(t, err)
	assert.Equal(t, model.Band{ID: 4, Name: "The Marching Four"}, b)

	require.NoError(t, svc.RenameBand(ctx, 4, "Marching Four"))
	assert.Equal(t, model.Band{ID: 4, Name: "Marching Four"}, w.bands[4], "rename keeps the identity")
	assert.Equal(t, 2, rl.n)
	assert.Equal(t, []string{"bands", "bands"}, pub.collections)
}

func TestService_BandValidation(t *testing.T) {
	svc, w, rl, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddBand(ctx, 0, "A")
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = svc.AddBand(ctx, 1, "   ")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.AddBand(ctx, 1, "A")
	require.NoError(t, err)
	_, err = svc.AddBand(ctx, 1, "A again")
	assert.ErrorIs(t, err, ErrDuplicate)

	assert.ErrorIs(t, svc.RenameBand(ctx, 42, "X"), ErrNotFound)
	assert.Len(t, w.bands, 1)
	assert.Equal(t, 1, rl.n, "failed writes do not trigger a reload")
}

func TestService_JuryMembers(t *testing.T) {
	svc, w, _, _ := newTestService(t)
	ctx := context.Background()

	j, err := svc.AddJuryMember(ctx, "Anne", model.Musicality, 1)
	require.NoError(t, err)
	assert.Equal(t, model.JuryMemberID("jury-1"), j.ID)

	_, err = svc.AddJuryMember(ctx, "Bob", model.Show, 9)
	assert.ErrorIs(t, err, ErrUnknownStage)
	_, err = svc.AddJuryMember(ctx, "Bob", model.Discipline("dance"), 1)
	assert.ErrorIs(t, err, model.ErrUnknownDiscipline)

	name := "Anne B."
	require.NoError(t, svc.UpdateJuryMember(ctx, j.ID, JuryMemberUpdate{Name: &name}))
	got := w.jury[j.ID]
	assert.Equal(t, "Anne B.", got.Name)
	assert.Equal(t, model.Musicality, got.Discipline)
	assert.Equal(t, 1, got.StageID)

	assert.ErrorIs(t, svc.UpdateJuryMember(ctx, j.ID, JuryMemberUpdate{}), ErrEmptyUpdate)
	bad := 7
	assert.ErrorIs(t, svc.UpdateJuryMember(ctx, j.ID, JuryMemberUpdate{StageID: &bad}), ErrUnknownStage)
}

func TestService_StageCheckNeedsRoster(t *testing.T) {
	svc := NewService(newFakeWriter(), NewStore(0, nil), nil, nil, nil)
	_, err := svc.AddJuryMember(context.Background(), "Anne", model.Show, 1)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestService_PublishFailureIsNotFatal(t *testing.T) {
	svc, _, _, pub := newTestService(t)
	pub.err = errors.New("broker down")
	require.NoError(t, svc.RenameStage(context.Background(), 1, "Main"))
}
