package constants

// 令牌类型常量
const (
	TokenTypeVerifyEmail   = "VERIFY_EMAIL"
	TokenTypeResetPassword = "RESET_PASSWORD"
)

// 记录类型常量
const (
	RecordTypeA     = "A"
	RecordTypeAAAA  = "AAAA"
	RecordTypeCNAME = "CNAME"
	RecordTypeTXT   = "TXT"
)

// 活动日志动作常量
const (
	ActionUserLogin        = "USER_LOGIN"
	ActionCreateSubdomain  = "CREATE_SUBDOMAIN"
	ActionDeleteSubdomain  = "DELETE_SUBDOMAIN"
	ActionChangePassword   = "CHANGE_PASSWORD"
	ActionUpdateProfile    = "UPDATE_PROFILE"
	ActionRegenerateAPIKey = "REGENERATE_API_KEY"
)

// 管理员特权动作常量
const (
	GodActionBanUser  = "BAN_USER"
	GodActionWipeLogs = "WIPE_LOGS"
)

// 用户风险等级常量
const (
	RiskLevelLow    = "LOW"
	RiskLevelMedium = "MEDIUM"
	RiskLevelHigh   = "HIGH"
)

// 风险等级阈值
const (
	RiskHighSubdomainCount = 20
	RiskMediumLogCount     = 100
)

// 系统通知类型常量
const (
	NotificationTypeInfo     = "info"
	NotificationTypeWarning  = "warning"
	NotificationTypeCritical = "critical"
)

// 队列常量
const (
	QueueDefault          = "default"
	QueueCritical         = "critical"
	TaskDNSRecordCleanup  = "dns:record_cleanup"
	TaskUserPurge         = "user:purge"
	TaskNotificationEmail = "notification:email"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "domku"
)

// 设置键常量
const (
	SettingKeyMaintenanceMode = "maintenance_mode"
	SettingKeySiteName        = "site_name"
	SettingKeySiteAnnounce    = "site_announcement"
)

// 凭据占位常量，记录创建失败但本地已落库时使用
const (
	RecordIDUnknown = "unknown"
)
