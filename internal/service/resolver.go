package service

import (
	"context"
	"fmt"

	"github.com/smsrates/pricefeed/internal/repository"
)

// ResolverService turns an mccmnc code into a network id, lazily creating the
// country and network rows on first sight. Both creations ride on the store's
// uniqueness constraints, so concurrent cycles resolve to the same rows.
type ResolverService struct {
	networks *repository.NetworkRepository
}

func NewResolverService(networks *repository.NetworkRepository) *ResolverService {
	return &ResolverService{networks: networks}
}

func (s *ResolverService) Resolve(ctx context.Context, mccmnc string) (int64, error) {
	if len(mccmnc) < 4 {
		return 0, fmt.Errorf("mccmnc %q too short", mccmnc)
	}

	net, err := s.networks.GetByMCCMNC(ctx, mccmnc)
	if err != nil {
		return 0, fmt.Errorf("lookup network %s: %w", mccmnc, err)
	}
	if net != nil {
		return net.ID, nil
	}

	mcc := mccmnc[:3]
	country, err := s.networks.EnsureCountry(ctx, "MCC "+mcc, mcc)
	if err != nil {
		return 0, fmt.Errorf("ensure country for mcc %s: %w", mcc, err)
	}

	net, err = s.networks.EnsureNetwork(ctx, country.ID, "Network "+mccmnc, mccmnc[3:], mccmnc)
	if err != nil {
		return 0, fmt.Errorf("ensure network %s: %w", mccmnc, err)
	}
	return net.ID, nil
}
