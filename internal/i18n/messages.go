package i18n

// messages maps a key to its English and Arabic text. Placeholders use
// fmt verbs with explicit argument indexes.
var messages = map[string][2]string{
	"common.getHelp":         {"Get help", "مساعدة"},
	"common.rights":          {"All Rights Reserved.", "جميع الحقوق محفوظة."},
	"common.home":            {"Home", "الرئيسية"},
	"common.all":             {"All", "الكل"},
	"common.close":           {"Close", "إغلاق"},
	"common.back":            {"Back", "رجوع"},
	"common.language":        {"Toggle language", "تبديل اللغة"},
	"common.toDark":          {"Switch to dark mode", "التبديل إلى الوضع الداكن"},
	"common.toLight":         {"Switch to light mode", "التبديل إلى الوضع الفاتح"},
	"help.title":             {"We're Here for You", "نحن هنا لمساعدتك"},
	"help.subtitle":          {"Our support team is here to assist you at any time.", "فريق الدعم جاهز لمساعدتك في أي وقت."},
	"help.whatsapp":          {"Contact via WhatsApp", "التواصل عبر واتساب"},
	"help.msg.general":       {"Hello, I need help. Phone: %[1]s", "مرحباً، أحتاج مساعدة. الهاتف: %[1]s"},
	"help.msg.home":          {"Hello, I need help with my account. User: %[1]s | Phone: %[2]s", "مرحباً، أحتاج مساعدة في حسابي. المستخدم: %[1]s | الهاتف: %[2]s"},
	"help.msg.bills":         {"Hello, I need help with my %[1]s bills. Bill: %[2]s | Phone: %[3]s", "مرحباً، أحتاج مساعدة في فواتير %[1]s. الفاتورة: %[2]s | الهاتف: %[3]s"},
	"home.greeting":          {"Hello, %[1]s", "مرحباً، %[1]s"},
	"home.welcomeBack":       {"Welcome back!", "مرحباً بعودتك!"},
	"home.user":              {"User", "مستخدم"},
	"home.noBills":           {"No bills found.", "لا توجد فواتير."},
	"home.ads":               {"Ads", "إعلانات"},
	"home.adsSubtitle":       {"Check out our latest offers!", "اطّلع على أحدث عروضنا!"},
	"home.announcement":      {"Announcement", "إشعار"},
	"home.annSubtitle":       {"Important Notice", "تنبيه هام"},
	"home.logout":            {"Logout", "تسجيل الخروج"},
	"home.logoutSuccess":     {"Logged out successfully", "تم تسجيل الخروج بنجاح"},
	"home.idleLogout":        {"You were logged out due to inactivity", "تم تسجيل خروجك بسبب عدم النشاط"},
	"type.water":             {"Water", "الماء"},
	"type.electricity":       {"Electricity", "الكهرباء"},
	"type.gas":               {"Gas", "الغاز"},
	"type.fees":              {"Fees", "الرسوم"},
	"status.paid":            {"Paid", "مدفوع"},
	"status.unpaid":          {"Unpaid", "غير مدفوع"},
	"service.water":          {"Water Bills", "فواتير الماء"},
	"service.electricity":    {"Electricity Bills", "فواتير الكهرباء"},
	"service.gas":            {"Gas Bills", "فواتير الغاز"},
	"service.fees":           {"Fees", "الرسوم"},
	"bills.overview":         {"Overview of your %[1]s bills", "نظرة عامة على فواتير %[1]s"},
	"bills.allMonths":        {"All months", "كل الأشهر"},
	"bills.allYears":         {"All years", "كل السنوات"},
	"bills.clear":            {"Clear", "مسح"},
	"bills.sort.newest":      {"Newest", "الأحدث"},
	"bills.sort.oldest":      {"Oldest", "الأقدم"},
	"bills.sort.amountHigh":  {"Amount: High to Low", "المبلغ: من الأعلى إلى الأقل"},
	"bills.sort.amountLow":   {"Amount: Low to High", "المبلغ: من الأقل إلى الأعلى"},
	"bills.empty":            {"No bills found for this section.", "لا توجد فواتير ضمن هذا القسم."},
	"bills.amount":           {"Amount", "المبلغ"},
	"bills.billId":           {"Bill ID", "معرّف الفاتورة"},
	"bills.date":             {"Date", "التاريخ"},
	"bills.status":           {"Status", "الحالة"},
	"bills.pay":              {"Pay", "ادفع"},
	"bills.request":          {"Request Bill", "طلب فاتورة"},
	"bills.userNotFound":     {"User not found", "المستخدم غير موجود"},
	"bills.alreadyRequested": {"You have already requested this bill.", "لقد قمت بطلب هذه الفاتورة مسبقاً."},
	"bills.requestSuccess":   {"Bill request sent successfully!", "تم إرسال طلب الفاتورة بنجاح!"},
	"bills.requestError":     {"Something went wrong. Try again.", "حدث خطأ ما. حاول مرة أخرى."},
	"ann.title":              {"Announcement", "الإعلانات"},
	"ann.subtitle":           {"Attention Please", "يرجى الانتباه"},
	"ann.tag.scheduled":      {"Scheduled", "مجدول"},
	"ann.tag.new":            {"New", "جديد"},
	"ann.tag.promo":          {"Promo", "عرض"},
	"ads.title":              {"Ads", "الإعلانات"},
	"ads.subtitle":           {"Browse latest community ads", "تصفح أحدث إعلانات المجمع"},
	"ads.goTo":               {"Go to Ad", "الانتقال للإعلان"},
	"pay.title":              {"Payment", "الدفع"},
	"pay.missingInfo":        {"Missing payment info. Go back to bills.", "معلومات الدفع غير مكتملة. عُد إلى الفواتير."},
	"pay.chooseMethod":       {"Choose payment method:", "اختر طريقة الدفع:"},
	"pay.method.card":        {"Bank Card", "بطاقة مصرفية"},
	"pay.method.zain":        {"Zain Cash", "زين كاش"},
	"pay.confirm":            {"Confirm Payment", "تأكيد الدفع"},
	"pay.notLoggedIn":        {"User not logged in", "المستخدم غير مسجل الدخول"},
	"pay.userNotFound":       {"User not found", "المستخدم غير موجود"},
	"pay.billNotFound":       {"Bill not found", "لم يتم العثور على الفاتورة"},
	"pay.failed":             {"Payment failed", "فشل الدفع"},
	"pay.success":            {"Payment completed successfully", "تم الدفع بنجاح"},
	"login.title":            {"Billing Hub", "مركز الفواتير"},
	"login.subtitle":         {"Welcome back! Manage your bills and services easily.", "مرحباً بعودتك! قم بإدارة فواتيرك وخدماتك بسهولة."},
	"login.signIn":           {"SIGN IN", "تسجيل الدخول"},
	"login.phone":            {"Phone Number", "رقم الهاتف"},
	"login.password":         {"Password", "كلمة المرور"},
	"login.remember":         {"Remember me", "تذكرني"},
	"login.success":          {"Signed in successfully", "تم تسجيل الدخول بنجاح"},
	"login.phoneRequired":    {"Please enter your phone number", "يرجى إدخال رقم الهاتف"},
	"login.passwordRequired": {"Please enter your password", "يرجى إدخال كلمة المرور"},
	"login.notRegistered":    {"Phone number is not registered", "رقم الهاتف غير مسجل"},
	"login.wrongPassword":    {"Incorrect password", "كلمة المرور غير صحيحة"},
	"login.error":            {"An error occurred while signing in", "حدث خطأ أثناء تسجيل الدخول"},
}

var monthNames = [2][12]string{
	{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	{"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو", "يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر"},
}
