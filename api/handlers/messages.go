package handlers

import "github.com/BaSui01/mascotctl/types"

// 面向 Web UI 的消息
const (
	MsgVoicePlayed    = "ボイスを再生しました"
	MsgServerStopped  = "サーバーを停止しました"
	MsgShutdownFailed = "シャットダウンに失敗しました"
	MsgNotFound       = "リソースが見つかりません"
	MsgOK             = "ok"
)

// SummaryForCode 返回错误码对应的用户可读摘要
func SummaryForCode(code types.ErrorCode) string {
	switch code {
	case types.ErrBadRequest:
		return "リクエストが不正です"
	case types.ErrNotFound:
		return MsgNotFound
	case types.ErrTimeout:
		return "タイムアウトしました"
	case types.ErrRateLimited:
		return "リクエストが多すぎます"
	case types.ErrQueueClosed, types.ErrQueueFull:
		return "サーバーが混雑しています"
	default:
		return "内部エラーが発生しました"
	}
}
