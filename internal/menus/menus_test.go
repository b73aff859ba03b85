package menus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nerdbook/internal/ctxkeys"
)

func TestQueryFiltersByContext(t *testing.T) {
	keys := ctxkeys.NewService()
	svc := NewService(keys)

	svc.Register(CellTitleMenu, Action{
		ID: "cell.run", Title: "Run", Group: "exec",
		When: WhenEquals(ctxkeys.KeyCellKind, "code"),
	})
	svc.Register(CellTitleMenu, Action{
		ID: "cell.delete", Title: "Delete", Group: "danger",
	})

	ctx := keys.Root().NewScoped()
	ctxkeys.NewKey(ctx, ctxkeys.KeyCellKind, "markup")

	groups := svc.Query(CellTitleMenu, ctx)
	require.Len(t, groups, 1)
	assert.Equal(t, "danger", groups[0].Name)

	ctxkeys.NewKey(ctx, ctxkeys.KeyCellKind, "code")
	groups = svc.Query(CellTitleMenu, ctx)
	require.Len(t, groups, 2)
	assert.Equal(t, "danger", groups[0].Name)
	assert.Equal(t, "exec", groups[1].Name)
}

func TestQueryOrdersWithinGroup(t *testing.T) {
	keys := ctxkeys.NewService()
	svc := NewService(keys)
	svc.Register(CellInsertMenu, Action{ID: "b", Group: "insert", Order: 2})
	svc.Register(CellInsertMenu, Action{ID: "a", Group: "insert", Order: 1})

	groups := svc.Query(CellInsertMenu, keys.Root())
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Actions, 2)
	assert.Equal(t, "a", groups[0].Actions[0].ID)
	assert.Equal(t, "b", groups[0].Actions[1].ID)
}

func TestContextTickFiresMenuChange(t *testing.T) {
	keys := ctxkeys.NewService()
	svc := NewService(keys)
	svc.Register(CellTitleMenu, Action{ID: "x"})

	var changed []MenuID
	unsub := svc.Changed.Subscribe(func(id MenuID) { changed = append(changed, id) })
	defer unsub()

	k := ctxkeys.NewKey(keys.Root(), ctxkeys.KeyCellRunState, "idle")
	k.Set("running")

	assert.Contains(t, changed, CellTitleMenu)
}

func TestRegisterNotifies(t *testing.T) {
	keys := ctxkeys.NewService()
	svc := NewService(keys)

	fired := false
	unsub := svc.Changed.Subscribe(func(id MenuID) { fired = id == CellTitleMenu })
	defer unsub()

	svc.Register(CellTitleMenu, Action{ID: "y"})
	assert.True(t, fired)
}
