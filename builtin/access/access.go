// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package access implements role based access control for the raffle contracts.
// Holders of DefaultAdminRole grant and revoke every other role.
package access

import (
	"github.com/pkg/errors"

	"github.com/luckydraw/lucky/builtin/reverts"
	"github.com/luckydraw/lucky/builtin/solidity"
	"github.com/luckydraw/lucky/lucky"
)

// Role identifies a capability.
type Role = lucky.Bytes32

var (
	DefaultAdminRole = Role{}

	RaffleManager            = newRole("RAFFLE_MANAGER")
	ParticipantManager       = newRole("PARTICIPANT_MANAGER")
	ParticipantFilterManager = newRole("PARTICIPANT_FILTER_MANAGER")
	RewardManager            = newRole("REWARD_MANAGER")
	RewardViewer             = newRole("REWARD_VIEWER")
	RandomGeneratorConsumer  = newRole("RANDOM_GENERATOR_CONSUMER")
	RandomGeneratorManager   = newRole("RANDOM_GENERATOR_MANAGER")
	OracleDataManager        = newRole("ORACLE_DATA_MANAGER")
	Whitelisted              = newRole("WHITELISTED")
)

var slotMembers = lucky.BytesToBytes32([]byte("access-members"))

var names = map[Role]string{
	DefaultAdminRole:         "DEFAULT_ADMIN",
	RaffleManager:            "RAFFLE_MANAGER",
	ParticipantManager:       "PARTICIPANT_MANAGER",
	ParticipantFilterManager: "PARTICIPANT_FILTER_MANAGER",
	RewardManager:            "REWARD_MANAGER",
	RewardViewer:             "REWARD_VIEWER",
	RandomGeneratorConsumer:  "RANDOM_GENERATOR_CONSUMER",
	RandomGeneratorManager:   "RANDOM_GENERATOR_MANAGER",
	OracleDataManager:        "ORACLE_DATA_MANAGER",
	Whitelisted:              "WHITELISTED",
}

func newRole(name string) Role {
	return lucky.Keccak256([]byte(name))
}

// RoleName returns a readable name for known roles and the hex id otherwise.
func RoleName(role Role) string {
	if name, ok := names[role]; ok {
		return name
	}
	return role.AbbrevString()
}

// RoleByName returns the role with the given readable name.
func RoleByName(name string) (Role, bool) {
	for role, n := range names {
		if n == name {
			return role, true
		}
	}
	return Role{}, false
}

// Service stores role membership of one contract.
type Service struct {
	members *solidity.Mapping[lucky.Bytes32, bool]
}

func NewService(sctx *solidity.Context) *Service {
	return &Service{
		members: solidity.NewMapping[lucky.Bytes32, bool](sctx, slotMembers),
	}
}

func memberKey(role Role, account lucky.Address) lucky.Bytes32 {
	return lucky.Blake2b(role.Bytes(), account.Bytes())
}

func (s *Service) HasRole(role Role, account lucky.Address) (bool, error) {
	ok, err := s.members.Get(memberKey(role, account))
	if err != nil {
		return false, errors.Wrap(err, "failed to get role member")
	}
	return ok, nil
}

// CheckRole fails with AccessControl unless account holds role.
func (s *Service) CheckRole(role Role, account lucky.Address) error {
	ok, err := s.HasRole(role, account)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithMessagef(reverts.ErrAccessControl, "%v is missing role %s", account, RoleName(role))
	}
	return nil
}

// SetupRole grants role without any check. Only meant for contract initialization.
func (s *Service) SetupRole(role Role, account lucky.Address) error {
	if err := s.members.Set(memberKey(role, account), true); err != nil {
		return errors.Wrap(err, "failed to set role member")
	}
	return nil
}

func (s *Service) GrantRole(caller lucky.Address, role Role, account lucky.Address) error {
	if err := s.CheckRole(DefaultAdminRole, caller); err != nil {
		return err
	}
	return s.SetupRole(role, account)
}

func (s *Service) RevokeRole(caller lucky.Address, role Role, account lucky.Address) error {
	if err := s.CheckRole(DefaultAdminRole, caller); err != nil {
		return err
	}
	s.members.Delete(memberKey(role, account))
	return nil
}

// RenounceRole lets an account drop one of its own roles.
func (s *Service) RenounceRole(caller lucky.Address, role Role, account lucky.Address) error {
	if caller != account {
		return errors.WithMessage(reverts.ErrAccessControl, "can only renounce roles for self")
	}
	s.members.Delete(memberKey(role, account))
	return nil
}
