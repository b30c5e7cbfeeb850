/*
 * @Description: HTML 转纯文本
 * @Author: 安知鱼
 * @Date: 2026-03-05 16:10:36
 * @LastEditTime: 2026-04-09 10:33:02
 * @LastEditors: 安知鱼
 */
package parser

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripTagsPolicy = bluemonday.StripTagsPolicy()

// StripHTML 去除所有标签，解码实体并折叠空白
func StripHTML(htmlContent string) string {
	text := html.UnescapeString(stripTagsPolicy.Sanitize(htmlContent))
	return strings.Join(strings.Fields(text), " ")
}
