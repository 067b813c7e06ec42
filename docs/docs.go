// Package docs 注册 Swagger 文档
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/api/v1/auth/signup": {"post": {"tags": ["认证"], "summary": "注册", "responses": {"201": {"description": "Created"}}}},
        "/api/v1/auth/login": {"post": {"tags": ["认证"], "summary": "登录", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/auth/refresh": {"post": {"tags": ["认证"], "summary": "刷新 Token", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/user/profile": {
            "get": {"tags": ["用户"], "summary": "获取个人资料", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["用户"], "summary": "更新个人资料", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/user/password": {"put": {"tags": ["用户"], "summary": "修改密码", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/rooms": {"get": {"tags": ["房间"], "summary": "房间列表", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/rooms/{id}": {"get": {"tags": ["房间"], "summary": "房间详情", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/rooms/{id}/availability": {"get": {"tags": ["房间"], "summary": "查询房间可用性", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/bookings": {
            "get": {"tags": ["预订"], "summary": "我的预订列表", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["预订"], "summary": "创建预订", "security": [{"Bearer": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/bookings/{id}": {"get": {"tags": ["预订"], "summary": "预订详情", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/bookings/{id}/verify-otp": {"post": {"tags": ["预订"], "summary": "验证码确认预订", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/bookings/{id}/cancel": {"post": {"tags": ["预订"], "summary": "取消预订", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/bookings/{id}/pay": {"post": {"tags": ["支付"], "summary": "发起支付", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/bookings/{id}/pass": {"get": {"tags": ["预订"], "summary": "入住凭证二维码", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/payments/webhook": {"post": {"tags": ["支付"], "summary": "支付结果回调", "responses": {"200": {"description": "OK"}}}},
        "/api/admin/bookings": {"get": {"tags": ["管理-预订"], "summary": "预订列表", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/admin/bookings/export": {"get": {"tags": ["管理-预订"], "summary": "导出预订 (xlsx)", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/admin/bookings/{id}": {"get": {"tags": ["管理-预订"], "summary": "预订详情", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/admin/bookings/{id}/cancel": {"post": {"tags": ["管理-预订"], "summary": "取消预订", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/admin/customers": {"get": {"tags": ["管理-顾客"], "summary": "顾客列表及预订", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/admin/rooms": {"post": {"tags": ["管理-房间"], "summary": "创建房间", "security": [{"Bearer": []}], "responses": {"201": {"description": "Created"}}}},
        "/api/admin/rooms/{id}": {
            "put": {"tags": ["管理-房间"], "summary": "更新房间", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["管理-房间"], "summary": "删除房间", "security": [{"Bearer": []}], "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo 文档元信息
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Hotel Booking API",
	Description:      "酒店客房预订服务：短信验证码确认、在线支付、管理后台",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
