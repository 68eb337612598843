package model

import "time"

// 管理者操作の種類
type AuditAction string

const (
	AuditActionCancelOrder    AuditAction = "CANCEL_ORDER"
	AuditActionApproveCanteen AuditAction = "APPROVE_CANTEEN"
	AuditActionRejectCanteen  AuditAction = "REJECT_CANTEEN"
	AuditActionToggleCanteen  AuditAction = "TOGGLE_CANTEEN_STATUS"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceCanteen AuditResourceType = "canteen"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID
	ActorAdminID int64 `gorm:"not null;index" json:"actor_admin_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//対象のキー（注文IDや店舗コード）
	ResourceKey string `gorm:"type:varchar(100);not null;index" json:"resource_key"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
