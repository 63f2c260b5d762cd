// Package main 启动应用程序
package main

import "github.com/docshield/docshield/pkg/cmd"

//	@title			DocShield API
//	@version		1.0
//	@description	DocShield 是一个文档上传与真实性验证服务，提供哈希签名、AI 辅助分析、人工审核、验证证书与分享链接等功能。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
