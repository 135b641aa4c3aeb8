package rbac

import (
	"procurement-backend/models"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Rule правило доступа к маршруту api
type Rule struct {
	Module     models.Module
	Permission models.Permission
	Roles      []models.UserRole
	Route      string          // "PUT /api/v1/purchase_request/:id", параметры пути через ":"
	Check      models.RbacFunc // nil - доступ только ролям из Roles
}

type Provider interface {
	// Check found=false если для маршрута нет правила
	Check(actor models.Actor, method, path string) (allowed, found bool)
	GetPermissions(role models.UserRole) map[models.Module][]models.Permission
}

var Instance Provider

func NewHandler() {
	i, err := newImpl(initRules())
	if err != nil {
		panic(err.Error())
	}
	Instance = i
}

type route struct {
	segments []string
	check    models.RbacFunc
}

type impl struct {
	exact       map[string]models.RbacFunc // "METHOD /path"
	routes      map[string][]route         // маршруты с параметрами по методу
	permissions map[models.UserRole]map[models.Module][]models.Permission
}

func newImpl(rules []Rule) (*impl, error) {
	i := &impl{
		exact:       map[string]models.RbacFunc{},
		routes:      map[string][]route{},
		permissions: map[models.UserRole]map[models.Module][]models.Permission{},
	}
	for _, rule := range rules {
		if err := i.register(rule); err != nil {
			return nil, err
		}
	}
	return i, nil
}

func (i *impl) register(rule Rule) error {
	method, path, err := parseRoute(rule.Route)
	if err != nil {
		return err
	}
	// подсказки для фронта
	for _, role := range rule.Roles {
		modules, ok := i.permissions[role]
		if !ok {
			modules = map[models.Module][]models.Permission{}
			i.permissions[role] = modules
		}
		if !slices.Contains(modules[rule.Module], rule.Permission) {
			modules[rule.Module] = append(modules[rule.Module], rule.Permission)
		}
	}

	check := rule.Check
	if check == nil {
		check = AllowByRoleFunc(rule.Roles)
	}
	if !strings.Contains(path, "/:") {
		i.exact[method+" "+path] = check
		return nil
	}
	i.routes[method] = append(i.routes[method], route{
		segments: splitPath(path),
		check:    check,
	})
	return nil
}

func (i *impl) Check(actor models.Actor, method, path string) (allowed, found bool) {
	method = strings.ToUpper(method)
	path = normalizePath(path)
	if check, ok := i.exact[method+" "+path]; ok {
		return check(actor), true
	}
	segments := splitPath(path)
	for _, r := range i.routes[method] {
		if matchSegments(r.segments, segments) {
			return r.check(actor), true
		}
	}
	return false, false
}

func (i *impl) GetPermissions(role models.UserRole) map[models.Module][]models.Permission {
	result := map[models.Module][]models.Permission{}
	for module, permissions := range i.permissions[role] {
		result[module] = slices.Clone(permissions)
	}
	return result
}

func AllowFunc() models.RbacFunc {
	return func(actor models.Actor) bool {
		return true
	}
}

func AllowByRoleFunc(roles []models.UserRole) models.RbacFunc {
	return func(actor models.Actor) bool {
		return slices.Contains(roles, actor.Role)
	}
}

func parseRoute(value string) (method, path string, err error) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", "", errors.Errorf("маршрут должен быть в формате \"METHOD /path\": %v", value)
	}
	return strings.ToUpper(parts[0]), normalizePath(parts[1]), nil
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for idx, segment := range pattern {
		if strings.HasPrefix(segment, ":") {
			if path[idx] == "" {
				return false
			}
			continue
		}
		if segment != path[idx] {
			return false
		}
	}
	return true
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
