/*
包 server 提供控制面 HTTP 服务器的生命周期管理。

# 概述

Manager 封装 net/http.Server，是监听套接字与生命周期状态的唯一持有者。
状态机为 Stopped → Starting → Running → Stopping → Stopped，
Stop 之后可以再次 Start。

# 主要能力

  - 非阻塞启动：Start(port) 绑定端口后在后台 goroutine 中接受连接，
    每个连接由独立 goroutine 处理。端口 0 绑定临时端口。
  - 优雅关闭：Stop 立即停止接受新连接，在宽限期内等待处理中的请求，
    超时后强制关闭剩余连接。重复调用是空操作。
  - 请求内关闭：StopAsync 在受跟踪的 goroutine 中停止服务器，
    Wait 等待这些 goroutine 结束。
  - 错误传播：Errors() 返回异步错误通道，意外退出后状态回到 Stopped。
*/
package server
