package validator

// Email domains registrations are accepted from.
var domains = []string{
	"gmail.com",
	"googlemail.com",
	"yahoo.com",
	"yahoo.co.uk",
	"hotmail.com",
	"outlook.com",
	"live.com",
	"icloud.com",
	"protonmail.com",
	"proton.me",
	"gmx.de",
	"gmx.net",
	"web.de",
	"mail.com",
	"zoho.com",
	"fastmail.com",
	"tutanota.com",
}
