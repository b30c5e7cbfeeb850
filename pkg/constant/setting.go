/*
 * @Description: 站点设置键
 * @Author: 安知鱼
 * @Date: 2026-03-02 11:31:52
 * @LastEditTime: 2026-04-02 14:20:07
 * @LastEditors: 安知鱼
 */
package constant

// SettingKey 为所有在应用中使用的设置键定义了类型安全的常量。
type SettingKey string

func (k SettingKey) String() string {
	return string(k)
}

const (
	KeySiteName SettingKey = "SITE_NAME"

	KeyPostModerationEnable SettingKey = "POST_MODERATION_ENABLE"
	KeyPostAutoTagEnable    SettingKey = "POST_AUTO_TAG_ENABLE"

	KeyRegisterCaptchaEnable SettingKey = "REGISTER_CAPTCHA_ENABLE"
	KeyAntiforgeryEnable     SettingKey = "ANTIFORGERY_ENABLE"
	KeyAIRateLimitPerMinute  SettingKey = "AI_RATE_LIMIT_PER_MINUTE"

	// --- 内部配置 (绝不暴露) ---
	KeyJWTSecret SettingKey = "JWT_SECRET"
	KeyIDSeed    SettingKey = "ID_SEED"
)
