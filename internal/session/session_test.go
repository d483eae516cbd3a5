package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/echolon/internal/model"
)

// fakeClock returns a manager whose clock the test controls.
func fakeClock(ttl time.Duration) (*Manager, *time.Time) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(ttl)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestCreateGet(t *testing.T) {
	m, _ := fakeClock(time.Minute)
	goals := []model.GoalTarget{{Metric: model.FieldRevenue, Target: 100}}

	s := m.Create(goals)
	if _, err := uuid.Parse(s.ID); err != nil {
		t.Errorf("id %q is not a uuid: %v", s.ID, err)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}

	goals[0].Target = 999
	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Goals[0].Target != 100 {
		t.Errorf("goal target = %v, want 100 (copied on create)", got.Goals[0].Target)
	}

	got.Notes = "mutated"
	again, _ := m.Get(s.ID)
	if again.Notes != "" {
		t.Error("Get should return a copy")
	}

	if _, err := m.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	m, _ := fakeClock(time.Minute)
	s := m.Create(nil)

	tbl := &model.Table{Source: "upload.csv"}
	updated, err := m.Update(s.ID, func(st *State) {
		st.Notes = "follow up"
		st.Table = tbl
		st.Scenario = model.ScenarioInput{PricePct: 5}
		st.ID = "hijack"
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ID != s.ID {
		t.Errorf("ID = %q, update must not change it", updated.ID)
	}
	got, _ := m.Get(s.ID)
	if got.Notes != "follow up" || got.Table != tbl || got.Scenario.PricePct != 5 {
		t.Errorf("state = %+v", got)
	}

	if _, err := m.Update("missing", func(*State) {}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestTTLEviction(t *testing.T) {
	m, now := fakeClock(10 * time.Minute)
	a := m.Create(nil)
	*now = now.Add(6 * time.Minute)
	b := m.Create(nil)

	if _, err := m.Get(a.ID); err != nil {
		t.Fatal(err)
	}

	*now = now.Add(11 * time.Minute)
	if _, err := m.Get(b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired Get err = %v, want ErrNotFound", err)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1 after lazy eviction", m.Len())
	}

	if n := m.Sweep(*now); n != 1 {
		t.Errorf("Sweep removed %d, want 1", n)
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0", m.Len())
	}
}

func TestSweepKeepsFresh(t *testing.T) {
	m, now := fakeClock(time.Minute)
	m.Create(nil)
	m.Create(nil)
	if n := m.Sweep(now.Add(30 * time.Second)); n != 0 {
		t.Errorf("Sweep removed %d, want 0", n)
	}
	if n := m.Sweep(now.Add(2 * time.Minute)); n != 2 {
		t.Errorf("Sweep removed %d, want 2", n)
	}
}

func TestDeleteAndIDs(t *testing.T) {
	m, now := fakeClock(time.Minute)
	a := m.Create(nil)
	*now = now.Add(time.Second)
	b := m.Create(nil)

	ids := m.IDs()
	if len(ids) != 2 || ids[0] != a.ID || ids[1] != b.ID {
		t.Errorf("IDs = %v, want [%s %s]", ids, a.ID, b.ID)
	}

	m.Delete(a.ID)
	m.Delete("unknown")
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestNewManagerDefaultTTL(t *testing.T) {
	if got := NewManager(0).TTL(); got != DefaultTTL {
		t.Errorf("TTL = %v, want %v", got, DefaultTTL)
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := NewManager(time.Hour)
	s := m.Create(nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = m.Update(s.ID, func(st *State) { st.Goals = append(st.Goals, model.GoalTarget{}) })
				_, _ = m.Get(s.ID)
				_ = m.Len()
			}
		}()
	}
	wg.Wait()

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Goals) != 16*50 {
		t.Errorf("goals = %d, want %d", len(got.Goals), 16*50)
	}
}
