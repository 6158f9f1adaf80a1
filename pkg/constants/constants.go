package constants

// 用户角色, 每个用户只属于一个角色
const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
	RoleDeveloper      = "developer"
	RoleSubmitter      = "submitter"
)

// 用户状态
const (
	UserStatusActive      int8 = 1
	UserStatusDeactivated int8 = 0
)

// Issue 状态
const (
	IssueStatusOpen   = "open"
	IssueStatusClosed = "closed"
)

// Issue 类型
const (
	IssueTypeBug     = "bug"
	IssueTypeFeature = "feature"
	IssueTypeOther   = "other"
)

// Issue 优先级范围, 1最高 5最低, 默认3
const (
	IssuePriorityMin     int8 = 1
	IssuePriorityMax     int8 = 5
	IssuePriorityDefault int8 = 3
)

// 评论/回复状态
const (
	CommentStatusActive  int8 = 1
	CommentStatusDeleted int8 = 0
)

// CommentTombstone 软删除后替换正文的占位文本, 行记录本身永不删除
const CommentTombstone = "[deleted]"

// 批量分配动作
const (
	AssignActionAssign   = "assign"
	AssignActionUnassign = "unassign"
)

// 认证类型
const (
	AuthTypeLDAP  = "ldap"
	AuthTypeLocal = "local"
)

// JWT 相关
const (
	JWTTypeAccess  = "access"
	JWTTypeRefresh = "refresh"
)

// Context 键
const (
	ContextKeyActor    = "actor"
	ContextKeyUsername = "username"
)

// HTTP Header
const (
	HeaderAuthorization = "Authorization"
	HeaderBearerPrefix  = "Bearer "
)

// DemoNotice 演示账号登录提示
const DemoNotice = "You are currently logged in as a demo user. This means that you can " +
	"interact with this website as if you are an admin, but any attempted changes will not actually be saved."
