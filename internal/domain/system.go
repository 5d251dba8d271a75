package domain

import (
	"time"
)

// User levels. Staff may create/delete categories and suppliers and delete
// products; normal users get read access plus product create/update.
const (
	UserLevelStaff  = "staff"
	UserLevelNormal = "normal"
)

type SysUser struct {
	ID        int64     `json:"id,string" form:"id"`
	Realname  string    `json:"realname" form:"realname"`
	Email     string    `json:"email" form:"email"`
	Username  string    `gorm:"size:64;uniqueIndex" json:"username" form:"username"`
	Password  string    `json:"-" form:"password"`
	About     string    `json:"about" form:"about"`
	Avatar    string    `gorm:"size:512" json:"avatar"`
	Level     string    `json:"level" form:"level"`
	Status    string    `json:"status" form:"status"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysUser) TableName() string {
	return "sys_user"
}

// IsStaff reports whether the account carries the elevated role.
func (u *SysUser) IsStaff() bool {
	return u.Level == UserLevelStaff
}

type SysOpLog struct {
	ID       int64     `json:"id,string"`
	Username string    `json:"username"`
	OprIp    string    `json:"opr_ip"`
	Action   string    `json:"action"`
	Detail   string    `json:"detail"`
	OptTime  time.Time `json:"opt_time"`
}

// TableName Specify table name
func (SysOpLog) TableName() string {
	return "sys_op_log"
}
