/*
包 hostthread 提供宿主线程动作调度器。

# 概述

桌面宿主的可变状态（音频设备、动画、进程生命周期）只能在单一逻辑线程上
访问。HTTP 处理器运行在任意 goroutine 上，它们通过 Scheduler.Submit
把动作交给宿主，自己只持有 Future；宿主在每帧调用 Pump（或运行 Run
循环）按提交顺序逐个执行动作。

# 核心类型

  - Scheduler：多生产者、单消费者的动作队列，提供 Submit/Pump/Run/Close。
  - Future：动作结果句柄，Wait 受调用方 ctx 约束。
  - Action：func(ctx) (any, error)。

# 取消语义

提交方 ctx 在出队前已结束的动作会被丢弃；以 MustRun 提交的动作
（例如进程退出）永不丢弃，也不占用队列容量。
*/
package hostthread
