package actor

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Domain errors for actor construction.
var (
	// ErrNameIsRequired is returned when attempting to create an actor without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrActorIsNotConstructed is returned when using an improperly initialized Actor.
	ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")
)

// Role is the tagged variant of an actor's role in the platform. Authorization
// decisions dispatch on this type instead of comparing role strings scattered
// through the code.
type Role int

const (
	// RoleUnknown represents a missing or unrecognized role.
	// Actors with this role are denied by the access policy.
	RoleUnknown Role = iota

	// RoleAdmin is a platform administrator.
	RoleAdmin

	// RoleBranchManager manages a delivery branch.
	RoleBranchManager

	// RoleStaff is operational staff with override access.
	RoleStaff

	// RoleShipper is a delivery actor; access is limited to shipments
	// assigned to them.
	RoleShipper
)

// getRoleStrings returns a map of Role values to their wire representations.
func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown:       "unknown",
		RoleAdmin:         "admin",
		RoleBranchManager: "branch_manager",
		RoleStaff:         "staff",
		RoleShipper:       "shipper",
	}
}

// RoleFromString parses the wire representation of a role.
// Unrecognized values map to RoleUnknown; the access policy denies those,
// so parsing never fails at the edge.
func RoleFromString(s string) Role {
	for role, str := range getRoleStrings() {
		if role != RoleUnknown && str == s {
			return role
		}
	}
	return RoleUnknown
}

// String returns the wire representation of the role.
// Implements fmt.Stringer; safe to call on any Role value.
func (r Role) String() string {
	if str, ok := getRoleStrings()[r]; ok {
		return str
	}
	return "unknown"
}

// Actor is the authenticated principal performing a shipment update, as
// supplied by the upstream authentication layer. It is a value object:
// immutable once constructed.
type Actor struct {
	id   kernel.UUID
	name string
	role Role

	guard guard.ConstructorGuard
}

// NewActor creates an Actor with the given identity and role.
// The id must be a valid UUID and the name non-empty, because every committed
// update is attributed to the actor in the audit trail. The role may be
// RoleUnknown; the access policy is the place that denies it.
func NewActor(id kernel.UUID, name string, role Role) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	if name == "" {
		return Actor{}, ErrNameIsRequired
	}

	return Actor{
		id:    id,
		name:  name,
		role:  role,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Actor was created through NewActor.
func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

// ID returns the actor's unique identifier.
func (a Actor) ID() kernel.UUID {
	return a.id
}

// Name returns the actor's display name used for audit attribution.
func (a Actor) Name() string {
	return a.name
}

// Role returns the actor's role.
func (a Actor) Role() Role {
	return a.role
}
