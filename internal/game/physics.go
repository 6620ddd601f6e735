package game

import (
	"github.com/annel0/sky-quest/internal/physics"
	"github.com/annel0/sky-quest/internal/world/entity"
	"github.com/go-gl/mathgl/mgl32"
)

// Physics - физический движок, к которому подключены коллайдеры сущностей
type Physics interface {
	ContactsWith(id entity.ID) []entity.ID
	CastRay(origin, dir mgl32.Vec3, maxTOI float32, filter physics.QueryFilter) (physics.RayHit, bool)
	SetLinearVelocity(id entity.ID, v mgl32.Vec3)
	SetTransform(id entity.ID, pos mgl32.Vec3, rot mgl32.Quat)
	Transform(id entity.ID) (mgl32.Vec3, mgl32.Quat, bool)
	Translate(id entity.ID, delta mgl32.Vec3)
	Step(dt float32)
}

var _ Physics = (*physics.World)(nil)
