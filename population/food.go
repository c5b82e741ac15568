package population

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/systems"
)

// foodStore keeps food items as ECS entities with a Position and a Food
// component, plus a spatial hash keyed by entity.
type foodStore struct {
	world  *ecs.World
	mapper *ecs.Map2[components.Position, components.Food]
	filter *ecs.Filter2[components.Position, components.Food]
	hash   *systems.SpatialHash[ecs.Entity]
	count  int

	consumed []ecs.Entity
}

func newFoodStore(width, height, cellSize float32) *foodStore {
	world := ecs.NewWorld()
	return &foodStore{
		world:  world,
		mapper: ecs.NewMap2[components.Position, components.Food](world),
		filter: ecs.NewFilter2[components.Position, components.Food](world),
		hash:   systems.NewSpatialHash[ecs.Entity](width, height, cellSize),
	}
}

// spawn creates a food item. It is not visible to queries until the next
// rebuild.
func (s *foodStore) spawn(pos components.Position, energy, radius float32) ecs.Entity {
	food := components.Food{Energy: energy, Radius: radius}
	s.count++
	return s.mapper.NewEntity(&pos, &food)
}

// get returns the components of a food entity.
func (s *foodStore) get(e ecs.Entity) (*components.Position, *components.Food) {
	return s.mapper.Get(e)
}

// sweep removes consumed food and returns how many were removed.
func (s *foodStore) sweep() int {
	// Collect first: the world is locked while a query is open.
	s.consumed = s.consumed[:0]
	query := s.filter.Query()
	for query.Next() {
		_, food := query.Get()
		if food.Consumed {
			s.consumed = append(s.consumed, query.Entity())
		}
	}

	for _, e := range s.consumed {
		s.world.RemoveEntity(e)
	}
	s.count -= len(s.consumed)
	return len(s.consumed)
}

// rebuild reindexes every food item.
func (s *foodStore) rebuild() {
	s.hash.Clear()
	query := s.filter.Query()
	for query.Next() {
		pos, _ := query.Get()
		s.hash.Insert(query.Entity(), pos.X, pos.Y)
	}
}

// each calls fn for every food item. fn must not spawn or remove food.
func (s *foodStore) each(fn func(pos components.Position, food components.Food)) {
	query := s.filter.Query()
	for query.Next() {
		pos, food := query.Get()
		fn(*pos, *food)
	}
}
