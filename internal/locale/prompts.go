package locale

import "fmt"

// Greeting picks the time-of-day greeting for the given local hour.
func Greeting(hour int) Text {
	switch {
	case hour < 6:
		return Text{English: "Greetings.", Cantonese: "你好."}
	case hour < 12:
		return Text{English: "Good morning.", Cantonese: "早晨."}
	case hour < 19:
		return Text{English: "Good afternoon.", Cantonese: "午安."}
	default:
		return Text{English: "Good evening.", Cantonese: "晩安."}
	}
}

var Welcome = Text{
	English:   "Welcome to Fake Bank.",
	Cantonese: "歡迎使用假銀行.",
}

var ChooseLanguage = Text{
	English:   "Please select a language.",
	Cantonese: "請選擇語言.",
}

// Language menu lines are fixed per language, not localized to the session.
var (
	LanguageOptionEnglish   = "For English, press 1."
	LanguageOptionCantonese = "廣東話, 請按二字."
)

var InvalidInput = Text{
	English:   "Invalid input, please try again.",
	Cantonese: "輸入錯誤, 請重新輸入.",
}

var MenuHeader = Text{
	English:   "Please select a service:",
	Cantonese: "請選擇服務:",
}

var MainMenu = []Item{
	{Label: Text{English: "To enquiry account balance", Cantonese: "查詢戶口結餘"}},
	{Label: Text{English: "For fund transfer", Cantonese: "轉帳服務"}},
	{Label: Text{English: "To change language preference", Cantonese: "選擇語言"}},
	{Label: Text{English: "To contact our Customer Service representative", Cantonese: "聯絡我們的客戶服務主任"}},
}

var menuLine = map[Language]func(action, key string) string{
	English:   func(action, key string) string { return fmt.Sprintf("%s, press %s.", action, key) },
	Cantonese: func(action, key string) string { return fmt.Sprintf("%s, 按%s字.", action, key) },
}

// MenuLine renders one "<action>, press <key>" menu announcement.
func MenuLine(l Language, action, key string) string {
	return menuLine[l](action, key)
}

var PromptAccountID = Text{
	English:   "Please enter the 13 digits account ID. To cancel, press star.",
	Cantonese: "請輸入十三位數字的戶口編號, 取消輸入, 按星字.",
}

var PromptPIN = Text{
	English:   "Please enter the 6 digits PIN number. To cancel, press star.",
	Cantonese: "請輸入六位數字的戶口密碼, 取消輸入, 按星字.",
}

var SystemError = Text{
	English:   "Sorry, there is a system error.",
	Cantonese: "對不起, 系統錯誤.",
}

var Incorrect = Text{
	English:   "Incorrect. Please try again.",
	Cantonese: "輸入錯誤, 請重新輸入.",
}

var AccountNotFound = Text{
	English:   "The account you have entered does not exist.",
	Cantonese: "你所輸入的戶口號碼並不存在.",
}

var PINIncorrectRetry = Text{
	English:   "The PIN you have entered is incorrect, please try again.",
	Cantonese: "你所輸入的密碼並不正確, 請重新輸入.",
}

var PINIncorrectStop = Text{
	English:   "Sorry, the PIN you have entered is incorrect.",
	Cantonese: "對不起, 你所輸入的密碼並不正確.",
}

var balanceAnswer = map[Language]func(balance string) string{
	English:   func(balance string) string { return fmt.Sprintf("Your account balance is $%s.", balance) },
	Cantonese: func(balance string) string { return fmt.Sprintf("你的戶口結餘為: $%s.", balance) },
}

// BalanceAnswer renders the spoken balance line.
func BalanceAnswer(l Language, balance string) string {
	return balanceAnswer[l](balance)
}

var EnquiryFollowup = []Item{
	{Label: Text{English: "To enquiry another account", Cantonese: "查詢其它戶口"}, Key: "1"},
	{Label: Text{English: "To transfer fund from this account", Cantonese: "由本戶口進行轉賬"}, Key: "2"},
	{Label: Text{English: "To go back to main menu", Cantonese: "返回主目錄"}, Key: "0"},
}

var AbortOp = Item{
	Label: Text{English: "To abort operation and go back to the main menu", Cantonese: "取消操作並返回主目錄"},
	Key:   "0",
}

var LastStep = Item{
	Label: Text{English: "To go back to the last step", Cantonese: "返回上一步"},
	Key:   "9",
}

var TransferTypeMenu = []Item{
	{Label: Text{English: "To transfer fund to your own accounts", Cantonese: "轉賬至同名戶口"}, Key: "1"},
	{Label: Text{English: "To transfer fund to pre-registered accounts in this bank", Cantonese: "轉賬至本行登記賬戶"}, Key: "2"},
	AbortOp,
}

var NoAccount = Text{
	English:   "Sorry, no accounts available.",
	Cantonese: "對不起, 找不到可供轉賬的戶口.",
}

var ChooseAccount = Text{
	English:   "Select an account below:",
	Cantonese: "請選擇戶口編號:",
}

var transferSelected = map[Language]func(account string) string{
	English:   func(account string) string { return fmt.Sprintf("You have selected account %s.", account) },
	Cantonese: func(account string) string { return fmt.Sprintf("你已選擇戶口 %s.", account) },
}

// TransferSelected renders the acknowledgement after an account is chosen.
func TransferSelected(l Language, account string) string {
	return transferSelected[l](account)
}

var EnqueuePrompt = Text{
	English:   "Connecting you to the next available representative. Please hold.",
	Cantonese: "正在為你接駁客戶服務主任, 請稍候.",
}

// Voicemail explanations, keyed by the reason path segment.
var CantContact = map[string]Text{
	"timeout": {
		English:   "Sorry, all of our representatives are busy at the moment.",
		Cantonese: "對不起, 我們的客戶服務主任正在繁忙中.",
	},
	"not_in_service": {
		English:   "Sorry, our customer service hotline is now closed.",
		Cantonese: "對不起, 客戶服務熱線現已暫停服務.",
	},
}

var VoicemailInvite = Text{
	English:   "Please leave a message after the tone. Press the pound key when finished.",
	Cantonese: "請在提示聲後留言, 完成後按井字.",
}

var VoicemailThanks = Text{
	English:   "Thank you. Our representative will contact you shortly. Goodbye.",
	Cantonese: "多謝你的留言, 我們的客戶服務主任會盡快與你聯絡. 再見.",
}
