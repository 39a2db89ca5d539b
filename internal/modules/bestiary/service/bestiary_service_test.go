package service_test

import (
	"context"
	"errors"
	"testing"

	"focusforge/internal/modules/bestiary/domain"
	"focusforge/internal/modules/bestiary/service"
	apperrors "focusforge/internal/platform/errors"
)

type fakeSource struct {
	catalog domain.Catalog
	err     error
	loads   int
}

func (f *fakeSource) Load(context.Context) (domain.Catalog, error) {
	f.loads++
	return f.catalog, f.err
}

func validCatalog() domain.Catalog {
	return domain.Catalog{
		Monsters: map[string]domain.Monster{
			"scrollfiend": {ID: "scrollfiend", Name: "Scrollfiend", HP: 1000},
			"gnat":        {ID: "gnat", Name: "Gnat", HP: 300},
			"tabberwock":  {ID: "tabberwock", Name: "Tabberwock", HP: 1000, TriggerEvent: domain.TriggerTabSwitch},
		},
		XP: domain.XPConfig{
			Base:             domain.XPBase{XPPerHP: 0.1, MinXP: 50},
			Modifiers:        domain.XPModifiers{MinFocusCrit: 1, MaxFocusCrit: 1.5},
			LevelCurve:       domain.LevelCurve{BaseXP: 100, Exponent: 1.5},
			StreakMultiplier: domain.StreakMultiplier{PerDay: 0.05, MaxMultiplier: 2},
			Titles:           map[int]string{1: "Novice"},
		},
	}
}

func TestMonsterLookupCachesCatalog(t *testing.T) {
	t.Parallel()
	source := &fakeSource{catalog: validCatalog()}
	svc := service.NewBestiaryService(source)
	ctx := context.Background()

	monster, err := svc.Monster(ctx, "scrollfiend")
	if err != nil {
		t.Fatalf("monster: %v", err)
	}
	if monster.Name != "Scrollfiend" {
		t.Fatalf("got %+v", monster)
	}
	if _, err := svc.Monster(ctx, "tabberwock"); err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if source.loads != 1 {
		t.Fatalf("catalog loaded %d times, want 1", source.loads)
	}

	if _, err := svc.Monster(ctx, "ghost"); !errors.Is(err, apperrors.ErrInvalidMonster) {
		t.Fatalf("unknown monster error = %v", err)
	}
}

func TestListMonstersSortedByHP(t *testing.T) {
	t.Parallel()
	svc := service.NewBestiaryService(&fakeSource{catalog: validCatalog()})

	monsters, err := svc.ListMonsters(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := make([]string, len(monsters))
	for i, m := range monsters {
		got[i] = m.ID
	}
	// Ascending HP, id breaks the tie.
	want := []string{"gnat", "scrollfiend", "tabberwock"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestFailedLoadIsRetried(t *testing.T) {
	t.Parallel()
	source := &fakeSource{err: errors.New("disk on fire")}
	svc := service.NewBestiaryService(source)
	ctx := context.Background()

	if _, err := svc.XPConfig(ctx); !errors.Is(err, apperrors.ErrMonstersNotLoaded) {
		t.Fatalf("error = %v", err)
	}

	source.err = nil
	source.catalog = validCatalog()
	if _, err := svc.XPConfig(ctx); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if source.loads != 2 {
		t.Fatalf("catalog loaded %d times, want 2", source.loads)
	}
}

func TestInvalidCatalogIsRejected(t *testing.T) {
	t.Parallel()
	broken := validCatalog()
	broken.Monsters["zero"] = domain.Monster{ID: "zero", Name: "Zero", HP: 0}
	svc := service.NewBestiaryService(&fakeSource{catalog: broken})

	if _, err := svc.ListMonsters(context.Background()); !errors.Is(err, apperrors.ErrMonstersNotLoaded) {
		t.Fatalf("error = %v", err)
	}
}
