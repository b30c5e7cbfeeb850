package model

// LookupMaster 是下拉框和聊天机器人使用的参考数据
type LookupMaster struct {
	ID          uint
	LookupType  string
	Code        string
	DisplayName string
	SortOrder   int
	IsActive    bool
}

type LookupResponse struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
	SortOrder   int    `json:"sortOrder"`
}
