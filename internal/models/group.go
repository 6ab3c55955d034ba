package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupMemberLimit is the maximum number of members per group. The
// settlement engine nets balances pairwise, so groups are capped at two
// members.
const GroupMemberLimit = 2

// Group represents a household sharing expenses.
type Group struct {
	DefaultModel
	Name string
	Note string
}

// GroupMembership links a user to a group.
type GroupMembership struct {
	Timestamps
	GroupID uuid.UUID `gorm:"primaryKey"`
	Group   Group     `json:"-"`
	UserID  uuid.UUID `gorm:"primaryKey"`
	User    User      `json:"-"`
}

// BeforeSave trims whitespace from all strings.
func (g *Group) BeforeSave(_ *gorm.DB) error {
	g.Name = strings.TrimSpace(g.Name)
	g.Note = strings.TrimSpace(g.Note)

	return nil
}

// checkIntegrity verifies references to other resources
func (m *GroupMembership) checkIntegrity(tx *gorm.DB, toSave GroupMembership) error {
	err := tx.First(&Group{}, toSave.GroupID).Error
	if err != nil {
		return err
	}

	return tx.First(&User{}, toSave.UserID).Error
}

// BeforeCreate verifies that group and user exist and that the group still
// has room for another member.
func (m *GroupMembership) BeforeCreate(tx *gorm.DB) error {
	toSave := tx.Statement.Dest.(*GroupMembership)
	err := m.checkIntegrity(tx, *toSave)
	if err != nil {
		return err
	}

	var count int64
	err = tx.Model(&GroupMembership{}).Where("group_id = ?", toSave.GroupID).Count(&count).Error
	if err != nil {
		return err
	}

	if count >= GroupMemberLimit {
		return ErrGroupFull
	}

	return nil
}

// MemberIDs returns the IDs of all group members, ordered by the time they
// joined.
func (g Group) MemberIDs(db *gorm.DB) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	err := db.Model(&GroupMembership{}).
		Where("group_id = ?", g.ID).
		Order("created_at ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// HasMember reports whether the user is a member of the group.
func (g Group) HasMember(db *gorm.DB, userID uuid.UUID) (bool, error) {
	var count int64

	err := db.Model(&GroupMembership{}).
		Where("group_id = ? AND user_id = ?", g.ID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Members returns all users that are members of the group.
func (g Group) Members(db *gorm.DB) ([]User, error) {
	var users []User

	err := db.
		Joins("JOIN group_memberships ON group_memberships.user_id = users.id").
		Where("group_memberships.group_id = ?", g.ID).
		Order("group_memberships.created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}
