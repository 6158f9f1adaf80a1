package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bugtrack/internal/demo"
	"bugtrack/internal/pkg/config"
)

// Scheduler 定时任务调度器, 目前只承载演示沙箱的周期性重置
type Scheduler struct {
	cron    *cron.Cron
	db      *gorm.DB
	logger  *zap.Logger
	demoCfg *config.DemoConfig
	entries map[string]cron.EntryID
}

// NewScheduler 创建调度器
func NewScheduler(db *gorm.DB, logger *zap.Logger, cfg *config.Config) *Scheduler {
	// cron 实例带秒级支持
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		cron:    c,
		db:      db,
		logger:  logger,
		demoCfg: &cfg.Demo,
		entries: make(map[string]cron.EntryID),
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	log := s.logger.Sugar()

	if !s.demoCfg.Enabled || s.demoCfg.ResetCron == "" {
		log.Info("演示沙箱重置任务未启用")
		return nil
	}

	// cron 表达式格式: 秒 分 时 日 月 周
	cronExpr := s.demoCfg.ResetCron
	fixturePath := s.demoCfg.FixturePath

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		log.Info("执行定时任务: 演示沙箱重置")
		fixture, err := demo.LoadFixture(fixturePath)
		if err != nil {
			log.Errorf("加载演示数据失败: %v", err)
			return
		}
		if err := demo.Reset(s.db, fixture); err != nil {
			log.Errorf("演示沙箱重置任务执行失败: %v", err)
		}
	})
	if err != nil {
		log.Errorf("注册演示沙箱重置任务失败: %v cron=%s", err, cronExpr)
		return err
	}

	s.entries["demo_reset"] = entryID
	log.Infof("演示沙箱重置任务已注册: %s entry_id=%d", cronExpr, entryID)

	s.cron.Start()
	log.Info("定时任务调度器启动成功")

	return nil
}

// Stop 停止调度器, 等待正在执行的任务完成
func (s *Scheduler) Stop() {
	s.logger.Info("正在停止定时任务调度器...")

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.logger.Info("定时任务调度器已停止")
}
