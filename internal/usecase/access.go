package usecase

import (
	"sort"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
)

var (
	orderingRoles  = []model.Role{model.RoleSalesRep, model.RoleManager, model.RoleAdmin}
	reviewerRoles  = []model.Role{model.RoleManager, model.RoleAdmin}
	cashierRoles   = []model.Role{model.RoleAccountant, model.RoleAdmin}
	paymentReaders = []model.Role{model.RoleAccountant, model.RoleManager, model.RoleAdmin}
)

func authorize(actor model.Actor, roles ...model.Role) error {
	if actor.UserID <= 0 || !actor.Is(roles...) {
		return domainErrors.ErrForbidden
	}
	return nil
}

// mergeLines sums requested quantities per product. Every line and every
// merged total stays within model.MaxQuantity.
func mergeLines(lines []model.LineRequest) (map[int64]int, error) {
	if len(lines) == 0 {
		return nil, domainErrors.ErrInvalidInput
	}
	out := make(map[int64]int, len(lines))
	for _, l := range lines {
		if l.ProductID <= 0 || !validQuantity(l.Quantity) {
			return nil, domainErrors.ErrInvalidInput
		}
		if l.Quantity > model.MaxQuantity-out[l.ProductID] {
			return nil, domainErrors.ErrInvalidInput
		}
		out[l.ProductID] += l.Quantity
	}
	return out, nil
}

func validQuantity(qty int) bool {
	return qty >= 1 && qty <= model.MaxQuantity
}

func sortedIDs[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
