package authz

import (
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// policies maps each role to the capabilities it grants directly;
// grants maps roles onto the role they inherit from.
var policies = map[Role][]Capability{
	RoleCaregiver: {CapTimeclockPunch, CapEmployeesRead},
	RoleScheduler: {CapTimeclockReadAll},
	RoleAdmin:     {CapEmployeesWrite, CapSecurityRead},
}

var grants = map[Role]Role{
	RoleScheduler: RoleCaregiver,
	RoleAdmin:     RoleScheduler,
}

//go:generate mockgen -source=enforcer.go -destination=mock/enforcer_mock.go -package=mock
type Service interface {
	Authorize(role Role, cap Capability) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
}

func NewService() (Service, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for role, caps := range policies {
		for _, c := range caps {
			obj, act := splitCapability(c)
			if _, err := e.AddPolicy(string(role), obj, act); err != nil {
				return nil, err
			}
		}
	}
	for child, parent := range grants {
		if _, err := e.AddGroupingPolicy(string(child), string(parent)); err != nil {
			return nil, err
		}
	}

	return &service{enforcer: e}, nil
}

// Authorize is the single authorization decision point for the API.
func (s *service) Authorize(role Role, cap Capability) (bool, error) {
	obj, act := splitCapability(cap)
	return s.enforcer.Enforce(string(NormalizeRole(string(role))), obj, act)
}

func splitCapability(c Capability) (obj, act string) {
	parts := strings.SplitN(string(c), ":", 2)
	if len(parts) != 2 {
		return string(c), ""
	}
	return parts[0], parts[1]
}
