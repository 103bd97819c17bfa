// Package domain はauthフィーチャーのクライアント向けエラーを定義します。
package domain

import "errors"

// 認証操作のドメインエラーです。ハンドラーはこれらをHTTPステータスと
// エラーコードに変換し、これ以外のエラーはINTERNAL_ERRORとして扱います。
var (
	// ErrInvalidCredentials はメールアドレスまたはパスワードが正しくないことを示します。
	// ユーザー列挙を防ぐため、ユーザーが存在しない場合もこのエラーを返します。
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountLocked は連続失敗によりアカウントがロック中であることを示します。
	ErrAccountLocked = errors.New("account locked")

	// ErrMissingFields は必須項目が未入力であることを示します。
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidEmail はメールアドレスの形式が不正であることを示します。
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrPasswordTooShort はパスワードが最低文字数に満たないことを示します。
	ErrPasswordTooShort = errors.New("password too short")

	// ErrPasswordsNotMatch は確認用パスワードが一致しないことを示します。
	ErrPasswordsNotMatch = errors.New("passwords do not match")

	// ErrEmailExists は同じメールアドレスの本登録ユーザーが既に存在することを示します。
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCode はコードが一致しない、または対象レコードが存在しないことを示します。
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrCodeExpired はコードの有効期限が切れていることを示します。
	ErrCodeExpired = errors.New("verification code expired")

	// ErrTooManyAttempts はコードの入力失敗が上限に達したことを示します。レコードは破棄済みです。
	ErrTooManyAttempts = errors.New("too many verification attempts")

	// ErrResendCooldown は前回の送信から再送までの待機時間が経過していないことを示します。
	ErrResendCooldown = errors.New("resend cooldown active")

	// ErrAlreadyVerified はメールアドレスが既に確認済みであることを示します。
	ErrAlreadyVerified = errors.New("email already verified")

	// ErrInvalidRefreshToken はリフレッシュトークンが不明・失効・期限切れであることを示します。
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrDelivery はコードのメール送信に失敗したことを示します。仮登録はコミット済みです。
	ErrDelivery = errors.New("code delivery failed")
)
