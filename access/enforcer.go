package access

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var casbinModelContent string

const (
	actionView = "view"

	// subjectAuthenticated holds the views every session may open. Known roles
	// inherit it; sessions with an unknown role are evaluated as it directly.
	subjectAuthenticated = "authenticated"
)

// newEnforcer loads the capability table into an in-memory Casbin enforcer.
func newEnforcer() (casbin.IEnforcer, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	for _, item := range commonViews {
		if _, err := enforcer.AddPolicy(subjectAuthenticated, item.Path, actionView); err != nil {
			return nil, fmt.Errorf("add common policy %s: %w", item.Path, err)
		}
	}
	for role, items := range capabilities {
		if _, err := enforcer.AddGroupingPolicy(string(role), subjectAuthenticated); err != nil {
			return nil, fmt.Errorf("add role %s: %w", role, err)
		}
		for _, item := range items {
			if _, err := enforcer.AddPolicy(string(role), item.Path, actionView); err != nil {
				return nil, fmt.Errorf("add policy %s %s: %w", role, item.Path, err)
			}
		}
	}
	return enforcer, nil
}
