package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulesOrder(t *testing.T) {
	modules := Modules()
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		require.NotNil(t, m.Migrations, m.Name)
		assert.NotEmpty(t, m.Migrations.Sorted(), "%s has no migrations", m.Name)
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"participant", "ledger", "scrum"}, names)
}
