package service

import (
	"gorm.io/gorm"

	"bugtrack/internal/model"
)

// persistFor 受限身份(演示沙箱账号)的唯一判定点。
// 鉴权与校验在调用前照常执行, 受限账号跳过整个持久化事务,
// 调用方按成功路径返回结果。
func persistFor(db *gorm.DB, actor *model.User, fn func(tx *gorm.DB) error) error {
	if actor != nil && actor.Restricted {
		return nil
	}
	return db.Transaction(fn)
}
