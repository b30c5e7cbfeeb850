/*
 * @Description: IBBS 程序入口
 * @Author: 安知鱼
 * @Date: 2026-03-02 09:40:11
 * @LastEditTime: 2026-04-18 17:21:02
 * @LastEditors: 安知鱼
 */
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/anzhiyu-c/ibbs/cmd/server"
	"github.com/anzhiyu-c/ibbs/internal/pkg/version"
)

// @title           IBBS API
// @version         1.0
// @description     IBBS 论坛后端接口文档
// @termsOfService  http://swagger.io/terms/

// @contact.name   安知鱼
// @contact.url    https://github.com/anzhiyu-c/ibbs

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8091
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 在请求头中添加 Bearer Token，格式为: Bearer {token}
func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "打印版本信息后退出")
	flag.Parse()

	if showVersion {
		fmt.Println(version.GetVersionString())
		return
	}

	// 调用位于 cmd/server 包中的 NewApp 函数来构建整个应用
	app, cleanup, err := server.NewApp()
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		fmt.Fprintf(os.Stderr, "应用初始化失败: %v\n", err)
		os.Exit(1)
	}

	app.PrintBanner()

	runErr := app.Run()
	// 先停止后台任务，再关闭数据库等资源
	app.Stop()
	cleanup()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "应用运行失败: %v\n", runErr)
		os.Exit(1)
	}
}
