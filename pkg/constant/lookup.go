package constant

// LookupType 是 lookup_masters 表中参考数据的分类
type LookupType string

func (t LookupType) String() string {
	return string(t)
}

const (
	LookupBugSeverity         LookupType = "BUG_SEVERITY"
	LookupBugStatus           LookupType = "BUG_STATUS"
	LookupChatbotSamplePrompt LookupType = "CHATBOT_SAMPLE_PROMPT"
)

// 缺陷严重程度与状态的固定编码
const (
	BugSeverityLow      = "LOW"
	BugSeverityMedium   = "MEDIUM"
	BugSeverityHigh     = "HIGH"
	BugSeverityCritical = "CRITICAL"

	BugStatusOpen       = "OPEN"
	BugStatusInProgress = "IN_PROGRESS"
	BugStatusResolved   = "RESOLVED"
	BugStatusClosed     = "CLOSED"
)

// KnownLookupTypes 返回所有受支持的 lookup 类型
func KnownLookupTypes() []LookupType {
	return []LookupType{LookupBugSeverity, LookupBugStatus, LookupChatbotSamplePrompt}
}
