/*
mascotctl 是桌面吉祥物控制面的命令行入口。

# 子命令

  - serve：加载配置，启动本地回环 HTTP 控制面，并在当前进程运行宿主循环。
  - play / voices / health / shutdown：通过 api.Client 访问正在运行的实例。
  - version：打印通过 ldflags 注入的版本信息。

# 关闭顺序

POST /shutdown 先把成功响应写出并刷新，然后异步停止服务器，服务器停止后
再向宿主线程提交退出请求。SIGINT/SIGTERM 走同样的顺序：先停服务器，再在
宿主线程上执行退出钩子，最后宿主循环排空队列并返回。
*/
package main
