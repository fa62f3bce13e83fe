package scheduling

import (
	"field-sales-bot/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveLeaveGlobalWins(t *testing.T) {
	d := day(2024, 5, 25)
	records := []models.LeaveRecord{
		personalLeave(d, staffA, "Wedding"),
		globalLeave(d, "Diwali"),
	}

	leave := EffectiveLeave(d, staffA, records)
	require.NotNil(t, leave)
	assert.Equal(t, models.LeaveScopeGlobal, leave.Scope)
	assert.Equal(t, "Diwali", leave.Reason)
}

func TestEffectiveLeavePersonal(t *testing.T) {
	d := day(2024, 5, 26)
	records := []models.LeaveRecord{
		personalLeave(d, adminID, "Wedding"),
		globalLeave(day(2024, 5, 25), "Diwali"),
	}

	leave := EffectiveLeave(d, adminID, records)
	require.NotNil(t, leave)
	assert.Equal(t, "Wedding", leave.Reason)

	assert.Nil(t, EffectiveLeave(d, staffA, records), "personal leave must not block other staff")
	assert.Nil(t, EffectiveLeave(day(2024, 5, 27), adminID, records))
	assert.Nil(t, EffectiveLeave(d, adminID, nil))
}

func TestEffectiveLeaveIgnoresTimeOfDay(t *testing.T) {
	records := []models.LeaveRecord{globalLeave(day(2024, 5, 25), "Diwali")}
	afternoon := day(2024, 5, 25).Add(15 * time.Hour)

	assert.NotNil(t, EffectiveLeave(afternoon, staffB, records))
}

func TestLeaveReasonFor(t *testing.T) {
	admin := &models.User{ID: adminID, Role: models.RoleAdmin}
	holder := &models.User{ID: staffA, Role: models.RoleStaff}
	peer := &models.User{ID: staffB, Role: models.RoleStaff}

	personal := personalLeave(day(2024, 5, 26), staffA, "Wedding")
	global := globalLeave(day(2024, 5, 25), "Diwali")

	tests := []struct {
		name       string
		record     *models.LeaveRecord
		viewer     *models.User
		text       string
		visibility Visibility
	}{
		{"global for peer", &global, peer, "Office Closed: Diwali", FullReason},
		{"global for nobody", &global, nil, "Office Closed: Diwali", FullReason},
		{"personal for admin", &personal, admin, "Unavailable: Wedding", FullReason},
		{"personal for holder", &personal, holder, "Unavailable: Wedding", FullReason},
		{"personal for peer", &personal, peer, MaskedLeaveText, MaskedReason},
		{"personal for nobody", &personal, nil, MaskedLeaveText, MaskedReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := LeaveReasonFor(tt.record, tt.viewer)
			assert.Equal(t, tt.text, reason.Text)
			assert.Equal(t, tt.visibility, reason.Visibility)
			if reason.Masked() {
				assert.NotContains(t, reason.String(), tt.record.Reason)
			}
		})
	}
}
