/*
包 usecase 实现控制面的业务用例：播放语音与关闭服务器。

用例不感知 HTTP：输入为已解析的参数，输出为结果值或 *types.Error。
所有触及宿主状态的操作都通过 HostScheduler 投递到宿主线程执行。

# 关闭顺序

ShutdownUseCase 先调用 ack 写出并刷新成功响应，确认成功后才异步停止
服务器，服务器停止后再向宿主线程提交必达的退出动作。重复的关闭请求
会被确认，但拆除只执行一次。
*/
package usecase
