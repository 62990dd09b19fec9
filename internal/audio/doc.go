// Package audio 提供语音目录、语音文件夹监听与宿主线程语音播放器。
//
// Library 可并发读取；Player 只能在宿主线程上调用，新的播放请求替换
// 正在播放的语音。
package audio
