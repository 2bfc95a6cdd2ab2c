package testutil

import (
	"testing"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestSetupTestStore(t *testing.T) {
	db := SetupTestStore(t, Seed{Owner: "alice", Taxonomy: model.DefaultTaxonomy()})

	assert.Equal(t, model.Taxonomy(model.DefaultTaxonomy()), db.MustLoad("alice"))
}
