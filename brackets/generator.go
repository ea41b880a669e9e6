package brackets

import (
	"github.com/Dosada05/efootball-hub/models"
)

type GenerateFixturesParams struct {
	Teams          []models.Team
	GroupID        string
	RoundRobinType models.RoundRobinType
}

type FixtureGenerator interface {
	GenerateFixtures(params GenerateFixturesParams) ([]models.Match, error)

	GetName() string
}
