package netsvr

import (
	"net/http"

	"github.com/zintix-labs/royale/server/app"
)

// NetSvr 路由加上啟停，本身即 app.Component；只交給最外層組裝使用。
type NetSvr interface {
	NetRouter
	app.Component
}

// NetRouter 純路由行為；Group 回呼只拿得到 NetRouter，看不到 Run/Shutdown。
type NetRouter interface {
	// middleware
	Use(middleware func(http.Handler) http.Handler)

	// 註冊路由
	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Put(path string, h http.HandlerFunc)
	Delete(path string, h http.HandlerFunc)

	// 群組路由
	Group(path string, fn func(NetRouter))
	With(middlewares ...func(http.Handler) http.Handler) NetRouter
}
